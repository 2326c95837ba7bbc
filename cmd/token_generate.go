// Copyright (c) 2026 John Dewey

// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to
// deal in the Software without restriction, including without limitation the
// rights to use, copy, modify, merge, publish, distribute, sublicense, and/or
// sell copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:

// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.

// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING
// FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER
// DEALINGS IN THE SOFTWARE.

package cmd

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/retr0h/auditchain/internal/authtoken"
	"github.com/retr0h/auditchain/internal/cli"
)

// TokenGenerator generates signed JWT tokens.
type TokenGenerator interface {
	Generate(
		signingKey string,
		roles []string,
		subject string,
		permissions []string,
	) (string, error)
}

// tokenGenerateCmd represents the tokenGenerate command.
var tokenGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new token",
	Long: `Generate a signed API token for a subject with roles. Direct
permissions, when given, replace the permissions the roles would grant.
`,
	PreRun: func(cmd *cobra.Command, _ []string) {
		roles, _ := cmd.Flags().GetStringSlice("roles")
		if err := validateRoles(roles); err != nil {
			cli.LogFatal(logger, "invalid roles", err,
				"allowed", authtoken.GenerateAllowedRoles(authtoken.RoleHierarchy))
		}

		permissions, _ := cmd.Flags().GetStringSlice("permissions")
		if err := validatePermissions(permissions); err != nil {
			cli.LogFatal(logger, "invalid permissions", err, "allowed", authtoken.AllPermissions)
		}
	},
	Run: func(cmd *cobra.Command, _ []string) {
		signingKey := appConfig.API.Server.Security.SigningKey
		roles, _ := cmd.Flags().GetStringSlice("roles")
		subject, _ := cmd.Flags().GetString("subject")
		permissions, _ := cmd.Flags().GetStringSlice("permissions")

		var tm TokenGenerator = authtoken.New(logger)
		token, err := tm.Generate(signingKey, roles, subject, permissions)
		if err != nil {
			cli.LogFatal(logger, "failed to generate token", err)
		}

		logger.Info(
			"generated token",
			slog.String("token", token),
			slog.String("roles", strings.Join(roles, ",")),
			slog.String("subject", subject),
		)
		if len(permissions) > 0 {
			logger.Info(
				"token permissions",
				slog.String("permissions", strings.Join(permissions, ",")),
			)
		}
	},
}

func validateRoles(
	roles []string,
) error {
	for _, role := range roles {
		if _, ok := authtoken.RoleHierarchy[role]; !ok {
			return fmt.Errorf("unsupported role: %s", role)
		}
	}

	return nil
}

func validatePermissions(
	permissions []string,
) error {
	for _, p := range permissions {
		if !slices.Contains(authtoken.AllPermissions, p) {
			return fmt.Errorf("unsupported permission: %s", p)
		}
	}

	return nil
}

func init() {
	tokenCmd.AddCommand(tokenGenerateCmd)

	allowedRoles := authtoken.GenerateAllowedRoles(authtoken.RoleHierarchy)
	tokenGenerateCmd.Flags().
		StringSliceP("roles", "r", []string{},
			fmt.Sprintf("Roles for the token (allowed: %s)", strings.Join(allowedRoles, ", ")))
	tokenGenerateCmd.Flags().
		StringP("subject", "u", "", "Subject for the token (e.g., user ID or service name)")
	tokenGenerateCmd.Flags().
		StringSliceP("permissions", "p", []string{},
			fmt.Sprintf("Direct permissions (overrides role expansion; allowed: %s)",
				strings.Join(authtoken.AllPermissions, ", ")))

	_ = tokenGenerateCmd.MarkFlagRequired("roles")
	_ = tokenGenerateCmd.MarkFlagRequired("subject")
}
