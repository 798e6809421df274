// Copyright (c) 2025 MC Youniverse
//
// This file is part of the attendance service.
//
// attendance is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@mcyouniverse.com for commercial licensing options.

package health

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckerNoChecks(t *testing.T) {
	c := NewChecker()
	assert.True(t, c.IsHealthy(context.Background()))
	assert.Empty(t, c.Check(context.Background()))
}

func TestCheckerPassingCheck(t *testing.T) {
	c := NewChecker()
	c.RegisterCheck("database", PingCheck("database", func(ctx context.Context) error {
		return nil
	}))

	results := c.Check(context.Background())
	require.Len(t, results, 1)
	assert.Equal(t, "database", results[0].Name)
	assert.Equal(t, StatusHealthy, results[0].Status)
	assert.True(t, c.IsHealthy(context.Background()))
}

func TestCheckerFailingCheck(t *testing.T) {
	c := NewChecker()
	c.RegisterCheck("database", PingCheck("database", func(ctx context.Context) error {
		return errors.New("connection refused")
	}))
	c.RegisterCheck("always-ok", func(ctx context.Context) CheckResult {
		return CheckResult{Status: StatusHealthy}
	})

	results := c.Check(context.Background())
	require.Len(t, results, 2)
	assert.Equal(t, StatusUnhealthy, AggregateStatus(results))
	assert.False(t, c.IsHealthy(context.Background()))

	for _, result := range results {
		if result.Name == "database" {
			assert.Equal(t, "connection refused", result.Error)
		}
	}
}

func TestCheckerNilCheckIgnored(t *testing.T) {
	c := NewChecker()
	c.RegisterCheck("nothing", nil)
	assert.Empty(t, c.Check(context.Background()))
}

func TestAggregateStatus(t *testing.T) {
	assert.Equal(t, StatusHealthy, AggregateStatus(nil))
	assert.Equal(t, StatusHealthy, AggregateStatus([]CheckResult{{Status: StatusHealthy}}))
	assert.Equal(t, StatusUnhealthy, AggregateStatus([]CheckResult{
		{Status: StatusHealthy},
		{Status: StatusUnhealthy},
	}))
}
