package cmd

import (
	"fmt"
	"testing"

	"world-sync/core/reconcile"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestPrintPlanReport(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := zap.New(core)

	plan := &reconcile.Plan{WorldID: "br52"}
	plan.Summary.Conquests = 7
	for i := range 7 {
		plan.Actions = append(plan.Actions, reconcile.Action{Type: reconcile.ActionConquest, Key: fmt.Sprintf("village:%d", i)})
	}

	printPlanReport(l, plan)

	assert.Equal(t, 1, logs.FilterMessage("Plan report").Len())
	assert.Equal(t, int64(7), logs.FilterMessage("Plan report").All()[0].ContextMap()["conquests"])
	assert.Equal(t, 5, logs.FilterMessage("Sample action").Len())
	assert.Equal(t, int64(2), logs.FilterMessage("Additional actions not shown").All()[0].ContextMap()["count"])
}

func TestPrintPlanReport_Empty(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	printPlanReport(zap.New(core), &reconcile.Plan{WorldID: "br52"})

	assert.Equal(t, 1, logs.FilterMessage("No changes detected").Len())
	assert.Zero(t, logs.FilterMessage("Sample action").Len())
}

func TestConfirmDestructiveAction_Yes(t *testing.T) {
	yesConfirm = true
	t.Cleanup(func() { yesConfirm = false })

	assert.True(t, confirmDestructiveAction("data"))
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range RootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"start", "sync", "toggle", "reset", "migrate", "status", "plan"} {
		assert.True(t, names[want], want)
	}
}
