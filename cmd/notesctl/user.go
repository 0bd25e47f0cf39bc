package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/noah-isme/college-notes-api/internal/dto"
	"github.com/noah-isme/college-notes-api/internal/repository"
	"github.com/noah-isme/college-notes-api/internal/service"
	"github.com/noah-isme/college-notes-api/pkg/database"
	appErrors "github.com/noah-isme/college-notes-api/pkg/errors"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage accounts",
}

var userCreateCmd = &cobra.Command{
	Use:   "create <email>",
	Short: "Create an account with any role",
	Long:  `Creates staff accounts, which cannot self-register. The first admin is bootstrapped this way.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		name, _ := flags.GetString("name")
		password, _ := flags.GetString("password")
		role, _ := flags.GetString("role")
		department, _ := flags.GetString("department")

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()

		users := service.NewUserService(repository.NewUserRepository(db), nil, nil, logr)
		user, err := users.Create(ctx, dto.CreateUserRequest{
			Email:      args[0],
			Password:   password,
			FullName:   name,
			Role:       role,
			Department: department,
		})
		if err != nil {
			return describe(err)
		}

		fmt.Println(success(fmt.Sprintf("created %s %s %s", user.Role, user.Email, faint(user.ID))))
		return nil
	},
}

// describe flattens field errors so they read well on a terminal.
func describe(err error) error {
	appErr := appErrors.FromError(err)
	if len(appErr.Fields) == 0 {
		return err
	}
	msg := appErr.Message
	for _, f := range appErr.Fields {
		msg += fmt.Sprintf("\n  %s: %s", f.Field, f.Message)
	}
	return fmt.Errorf("%s", msg)
}

func init() {
	userCreateCmd.Flags().String("name", "", "full name")
	userCreateCmd.Flags().String("password", "", "initial password (min 6 characters)")
	userCreateCmd.Flags().String("role", "admin", "student, teacher or admin")
	userCreateCmd.Flags().String("department", "", "department code")
	_ = userCreateCmd.MarkFlagRequired("name")
	_ = userCreateCmd.MarkFlagRequired("password")
	_ = userCreateCmd.MarkFlagRequired("department")
	userCmd.AddCommand(userCreateCmd)
	rootCmd.AddCommand(userCmd)
}
