package agents

import (
	"context"

	"dripcompounder/config"
	"dripcompounder/metrics"
	"dripcompounder/utils"

	"github.com/sirupsen/logrus"
)

type AgentAbs struct {
	ID       int
	Name     string
	Config   *config.Config
	Contract *utils.Contract
	Logger   *logrus.Entry
	Metrics  *metrics.Metrics
}

type Agent interface {
	Execute(ctx context.Context)
	GetName() string
	GetID() int
}

func (a *AgentAbs) Execute(ctx context.Context) {
	a.Logger.Info("Abstract agent is executing...")
}

func (a *AgentAbs) GetName() string {
	return a.Name
}

func (a *AgentAbs) GetID() int {
	return a.ID
}

func newAgentAbs(id int, name string, cfg *config.Config, contract *utils.Contract, logger *logrus.Logger, m *metrics.Metrics) AgentAbs {
	return AgentAbs{
		ID:       id,
		Name:     name,
		Config:   cfg,
		Contract: contract,
		Logger:   logger.WithField("agent", name),
		Metrics:  m,
	}
}
