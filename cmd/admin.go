package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	service "github.com/okian/skillswap/internal/app"
	"github.com/okian/skillswap/internal/domain/model"
	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// errNoDataDir is returned by offline commands when the store is in memory.
var errNoDataDir = errors.New("data_dir must be set; offline commands need a persistent store")

// withOfflineService opens the configured store without the HTTP server
// and runs fn against it. The server must not be running on the same
// data_dir, Badger holds a directory lock.
func withOfflineService(ctx context.Context, fn func(*service.Service) error) error {
	cfg, err := setup(ctx)
	if err != nil {
		return err
	}
	if cfg.DataDir == "" {
		return errNoDataDir
	}
	opts, err := serviceOptions(cfg)
	if err != nil {
		return err
	}
	svc := service.New(opts...)
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer func() { _ = svc.Stop(context.WithoutCancel(ctx)) }()
	return fn(svc)
}

func memberCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "member", Short: "Manage members"}

	var (
		id, name, location, balance string
	)
	create := &cobra.Command{
		Use:   "create",
		Short: "Seed a member with an opening balance",
		RunE: func(cmd *cobra.Command, _ []string) error {
			opening, err := decimal.NewFromString(balance)
			if err != nil {
				return fmt.Errorf("--balance: %w", err)
			}
			return withOfflineService(cmd.Context(), func(svc *service.Service) error {
				m, err := svc.CreateMember(cmd.Context(), service.CreateMemberInput{
					ID:             id,
					Name:           name,
					Location:       location,
					InitialBalance: opening,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "member %s created with %s credits\n", m.ID, m.TimeBalance)
				return nil
			})
		},
	}
	create.Flags().StringVar(&id, "id", "", "Member id (generated when empty)")
	create.Flags().StringVar(&name, "name", "", "Display name")
	create.Flags().StringVar(&location, "location", "", "Neighbourhood")
	create.Flags().StringVar(&balance, "balance", "0", "Opening time-credit balance")
	_ = create.MarkFlagRequired("name")

	cmd.AddCommand(create)
	return cmd
}

func skillCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "skill", Short: "Manage skills"}

	var (
		owner, title, category, rate string
	)
	create := &cobra.Command{
		Use:   "create",
		Short: "Offer a skill on behalf of a member",
		RunE: func(cmd *cobra.Command, _ []string) error {
			hourly, err := decimal.NewFromString(rate)
			if err != nil {
				return fmt.Errorf("--rate: %w", err)
			}
			return withOfflineService(cmd.Context(), func(svc *service.Service) error {
				s, err := svc.CreateSkill(cmd.Context(), service.CreateSkillInput{
					OwnerID:    owner,
					Title:      title,
					Category:   category,
					HourlyRate: hourly,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "skill %s created for %s\n", s.ID, s.OwnerID)
				return nil
			})
		},
	}
	create.Flags().StringVar(&owner, "owner", "", "Owning member id")
	create.Flags().StringVar(&title, "title", "", "Skill title")
	create.Flags().StringVar(&category, "category", "", "Category")
	create.Flags().StringVar(&rate, "rate", "1", "Time credits charged per hour")
	_ = create.MarkFlagRequired("owner")
	_ = create.MarkFlagRequired("title")

	cmd.AddCommand(create)
	return cmd
}

func exchangesCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "exchanges", Short: "Inspect exchanges"}

	var (
		member string
		limit  int
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List a member's exchanges, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withOfflineService(cmd.Context(), func(svc *service.Service) error {
				exchanges, err := svc.ListExchanges(cmd.Context(), member, limit)
				if err != nil {
					return err
				}
				renderExchanges(cmd.OutOrStdout(), member, exchanges)
				return nil
			})
		},
	}
	list.Flags().StringVar(&member, "member", "", "Member id")
	list.Flags().IntVar(&limit, "limit", 20, "Maximum rows")
	_ = list.MarkFlagRequired("member")

	cmd.AddCommand(list)
	return cmd
}

// renderExchanges writes exchanges as a table from member's point of view.
func renderExchanges(w io.Writer, member string, exchanges []model.Exchange) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Role", "Counterparty", "Status", "Hours", "Credits", "Created"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)

	for i := range exchanges {
		ex := &exchanges[i]
		role, _ := ex.RoleOf(member)
		counterparty := ex.ProviderID
		if role == model.RoleProvider {
			counterparty = ex.RequesterID
		}
		table.Append([]string{
			ex.ID,
			string(role),
			counterparty,
			ex.Status.String(),
			ex.Duration.String(),
			ex.TimeCredits.String(),
			ex.CreatedAt.Format("2006-01-02 15:04"),
		})
	}
	table.Render()
}
