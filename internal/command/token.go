package command

import (
	"fmt"

	"supplier-kpi-service/pkg/jwtutil"

	"github.com/spf13/cobra"
)

func newTokenCommand(a *app) *cobra.Command {
	var (
		email  string
		userID uint
		role   string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a signed bearer token for the API",
		Long: `Token signs a JWT with JWT_SIGNING_KEY, valid for JWT_EXPIRATION_HOURS.
Use it against a server running with AUTH_ENABLED=true.`,
		Example: `  curl -H "Authorization: Bearer $(supplier-kpi token --email me@example.com --user-id 1)" localhost:8085/api/kpis/overall`,
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := jwtutil.GenerateToken(email, userID, role)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Token subject email")
	cmd.Flags().UintVar(&userID, "user-id", 0, "Token user id")
	cmd.Flags().StringVar(&role, "role", "analyst", "Token role")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
