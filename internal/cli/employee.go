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

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcyouniverse/attendance/internal/store/postgres"
	"github.com/mcyouniverse/attendance/pkg/attendance"
)

var (
	employeeName       string
	employeeEmail      string
	employeeDepartment string
	employeeRole       string
)

var employeeCmd = &cobra.Command{
	Use:   "employee",
	Short: "Manage provisioned employees",
}

var employeeAddCmd = &cobra.Command{
	Use:   "add <employee-id>",
	Short: "Provision an employee",
	Long: `Provision an employee record so the attendance gate recognizes
the identifier. Employee IDs follow the AFG-A001 format.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		employeeID := args[0]
		if !attendance.EmployeeIDPattern.MatchString(employeeID) {
			return fmt.Errorf("invalid employee ID format: %s", employeeID)
		}
		if employeeName == "" {
			return fmt.Errorf("--name is required")
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Database.URL == "" {
			return fmt.Errorf("a database URL is required to provision employees")
		}

		ctx := cmd.Context()
		pool, err := postgres.Connect(ctx, cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		if cfg.Database.Migrate {
			if err := postgres.Migrate(ctx, pool); err != nil {
				return fmt.Errorf("failed to run schema migration: %w", err)
			}
		}

		store := postgres.NewEmployeeStore(pool)
		emp := &attendance.Employee{
			EmployeeID: employeeID,
			Name:       employeeName,
			Email:      employeeEmail,
			Department: employeeDepartment,
			Role:       employeeRole,
			Active:     true,
		}
		if err := store.Create(ctx, emp); err != nil {
			return fmt.Errorf("failed to create employee: %w", err)
		}

		fmt.Printf("employee %s (%s) provisioned\n", emp.EmployeeID, emp.Name)
		return nil
	},
}

func init() {
	employeeAddCmd.Flags().StringVar(&employeeName, "name", "", "employee display name (required)")
	employeeAddCmd.Flags().StringVar(&employeeEmail, "email", "", "employee email")
	employeeAddCmd.Flags().StringVar(&employeeDepartment, "department", "", "employee department")
	employeeAddCmd.Flags().StringVar(&employeeRole, "role", "", "employee role")
	employeeCmd.AddCommand(employeeAddCmd)
}
