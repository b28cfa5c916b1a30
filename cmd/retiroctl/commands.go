package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/igreja-retiro/retiro-api/internal/config"
	"github.com/igreja-retiro/retiro-api/internal/database"
	"github.com/igreja-retiro/retiro-api/internal/fees"
	"github.com/igreja-retiro/retiro-api/internal/models"
	"github.com/igreja-retiro/retiro-api/internal/registration"
	"github.com/igreja-retiro/retiro-api/internal/store"
)

// openStore connects with the server's configuration. Connect migrates.
func openStore() *store.GormStore {
	cfg := config.LoadConfig()
	return store.NewGormStore(database.Connect(cfg))
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Run: func(cmd *cobra.Command, args []string) {
			openStore()
			log.Printf("Database schema is up to date")
		},
	}
}

func churchesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "churches",
		Short: "Manage churches",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "import FILE",
		Short: "Create or update churches from a YAML file",
		Long: `Reads a YAML file of the form

churches:
  - name: Igreja Sião
    spots: 20

Churches are matched by name; existing ones get their spots updated.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			return importChurches(cmd.Context(), openStore(), f, cmd.OutOrStdout())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List churches and their spots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listChurches(cmd.Context(), openStore(), cmd.OutOrStdout())
		},
	})

	return cmd
}

func usersCmd() *cobra.Command {
	var revoke bool

	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage admin users",
	}

	promote := &cobra.Command{
		Use:   "promote DISCORD_ID",
		Short: "Grant (or with --revoke, remove) admin access",
		Long:  "The user must have logged in once so that their Discord account is known.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return promoteUser(cmd.Context(), openStore(), args[0], !revoke, cmd.OutOrStdout())
		},
	}
	promote.Flags().BoolVar(&revoke, "revoke", false, "Remove admin access instead")
	cmd.AddCommand(promote)

	return cmd
}

func feesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fees",
		Short: "Fee calculations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "quote BIRTH_DATE...",
		Short: "Price registrants by birth date (DD/MM/YYYY or YYYY-MM-DD)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return quoteFees(args, time.Now(), cmd.OutOrStdout())
		},
	})

	return cmd
}

type churchFile struct {
	Churches []struct {
		Name  string `yaml:"name"`
		Spots int    `yaml:"spots"`
	} `yaml:"churches"`
}

func importChurches(ctx context.Context, st store.Churches, r io.Reader, out io.Writer) error {
	var file churchFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return fmt.Errorf("decode churches: %w", err)
	}

	existing, err := st.ListChurches(ctx)
	if err != nil {
		return err
	}
	byName := make(map[string]uint, len(existing))
	for _, c := range existing {
		byName[strings.ToLower(c.Name)] = c.ID
	}

	var created, updated int
	for i, entry := range file.Churches {
		name := strings.TrimSpace(entry.Name)
		if len(name) < 2 || entry.Spots < 0 {
			return fmt.Errorf("church %d: name must have at least 2 characters and spots must not be negative", i+1)
		}

		if id, ok := byName[strings.ToLower(name)]; ok {
			spots := entry.Spots
			if _, err := st.UpdateChurch(ctx, id, store.ChurchPatch{Spots: &spots}); err != nil {
				return err
			}
			updated++
			continue
		}

		church := models.Church{Name: name, Spots: entry.Spots}
		if err := st.CreateChurch(ctx, &church); err != nil {
			return err
		}
		byName[strings.ToLower(name)] = church.ID
		created++
	}

	fmt.Fprintf(out, "%d created, %d updated\n", created, updated)
	return nil
}

func listChurches(ctx context.Context, st store.Churches, out io.Writer) error {
	churches, err := st.ListChurches(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSPOTS\tAVAILABLE")
	for _, c := range churches {
		fmt.Fprintf(w, "%d\t%s\t%d\t%t\n", c.ID, c.Name, c.Spots, c.Available())
	}
	return w.Flush()
}

func promoteUser(ctx context.Context, st store.Users, discordID string, admin bool, out io.Writer) error {
	err := st.SetAdmin(ctx, discordID, admin)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("no user with Discord id %s; they must log in first", discordID)
	}
	if err != nil {
		return err
	}

	if admin {
		fmt.Fprintf(out, "%s is now an admin\n", discordID)
	} else {
		fmt.Fprintf(out, "%s is no longer an admin\n", discordID)
	}
	return nil
}

func quoteFees(dates []string, now time.Time, out io.Writer) error {
	inputs := make([]registration.DateInput, 0, len(dates))
	for _, d := range dates {
		inputs = append(inputs, registration.ParseDateInput(d))
	}
	total := registration.QuoteDates(inputs, fees.DefaultSchedule, now)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BIRTH DATE\tFEE\tPRE-FEE")
	for i, q := range total.Items {
		fmt.Fprintf(w, "%s\t%d\t%d\n", dates[i], q.Fee, q.PreFee)
	}
	fmt.Fprintf(w, "TOTAL\t%d\t%d\n", total.Fee, total.PreFee)
	fmt.Fprintf(w, "REMAINING\t%d\t\n", total.Remaining)
	return w.Flush()
}
