package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/geo-scorer/internal/config"
	"github.com/jonathan/geo-scorer/internal/server"
	"github.com/jonathan/geo-scorer/internal/types"
)

var hashKeyCmd = &cobra.Command{
	Use:   "hash-key [key]",
	Short: "Print the bcrypt hash of an API key for server.api_keys",
	Long: `Hashes an API key with BCRYPT_COST and API_KEY_PEPPER. The key is read from
the argument, or from the first line of stdin when no argument is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHashKey,
}

var (
	tokenSubject string
	tokenTier    string
)

var issueTokenCmd = &cobra.Command{
	Use:     "issue-token",
	Short:   "Mint a bearer token granting a tier (requires JWT_SECRET)",
	Example: `  JWT_SECRET=... geo_scorer issue-token --subject acme --tier pro`,
	RunE:    runIssueToken,
}

func init() {
	issueTokenCmd.Flags().StringVar(&tokenSubject, "subject", "", "Token subject, usually the customer name")
	issueTokenCmd.Flags().StringVarP(&tokenTier, "tier", "t", "", "Tier to grant: free, pro or agency")
	_ = issueTokenCmd.MarkFlagRequired("subject")
	_ = issueTokenCmd.MarkFlagRequired("tier")
	rootCmd.AddCommand(hashKeyCmd, issueTokenCmd)
}

func runHashKey(cmd *cobra.Command, args []string) error {
	var key string
	if len(args) == 1 {
		key = args[0]
	} else {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("failed to read key from stdin: %w", err)
		}
		key = strings.TrimSpace(line)
	}

	passwords, err := config.NewPasswordConfig()
	if err != nil {
		return err
	}
	hash, err := passwords.HashPassword(key)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), hash)
	return nil
}

func runIssueToken(cmd *cobra.Command, _ []string) error {
	tier, err := types.ParseTier(tokenTier)
	if err != nil {
		return err
	}
	jwtCfg, err := config.NewJWTConfig()
	if err != nil {
		return err
	}
	token, err := server.NewJWTService(jwtCfg).GenerateToken(tokenSubject, tier)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
