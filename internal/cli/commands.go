package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"

	"github.com/VitaminP8/postery-admin/internal/auth"
	"github.com/VitaminP8/postery-admin/internal/dashboard"
	"github.com/VitaminP8/postery-admin/internal/listing"
	"github.com/VitaminP8/postery-admin/internal/seed"
)

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := bootstrap(cmd, true, false)
			if err != nil {
				return err
			}
			defer rt.Close()

			if rt.cfg.Storage == "memory" {
				return errors.New("memory storage has no schema")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s schema is up to date\n", rt.cfg.Storage)
			return nil
		},
	}
	return withStorage(cmd)
}

func newSeedCommand() *cobra.Command {
	var cfg seed.Config

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the admin account and random users, posts and comments",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := bootstrap(cmd, true, false)
			if err != nil {
				return err
			}
			defer rt.Close()

			s := seed.New(rt.app.Stores.Users, rt.app.Stores.Posts, rt.app.Stores.Comments, rt.app.Locations)
			res, err := s.Run(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "admin: %s\nusers: %d\nposts: %d\ncomments: %d\n",
				res.Admin.Email, res.Users, res.Posts, res.Comments)
			return nil
		},
	}
	cmd.Flags().IntVar(&cfg.Users, "users", seed.DefaultUsers, "Сколько случайных пользователей создать")
	cmd.Flags().Int64Var(&cfg.Seed, "seed", 0, "Seed генератора (0 - текущее время)")
	return withStorage(cmd)
}

func newStatsCommand() *cobra.Command {
	var activity int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print the dashboard tiles and recent activity",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := bootstrap(cmd, false, false)
			if err != nil {
				return err
			}
			defer rt.Close()

			stats, err := rt.app.Dashboard.Stats(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderStats(stats))

			if activity <= 0 {
				return nil
			}
			page, err := rt.app.Dashboard.RecentActivity(cmd.Context(), listing.Request{PerPage: activity})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderActivity(page.Items, page.Total))
			return nil
		},
	}
	cmd.Flags().IntVar(&activity, "activity", 5, "Сколько записей ленты показать (0 - не показывать)")
	return withStorage(cmd)
}

var (
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
	valueStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
)

var tileStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("#444444")).
	Padding(0, 2).
	Width(22)

// renderStats draws one bordered tile per stat, side by side.
func renderStats(stats []dashboard.Stat) string {
	tiles := make([]string, 0, len(stats))
	for _, s := range stats {
		tiles = append(tiles, tileStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
			labelStyle.Render(s.Label),
			valueStyle.Render(s.Display),
			labelStyle.Render(humanize.Comma(s.Value)),
		)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tiles...)
}

func renderActivity(rows []dashboard.Activity, total int64) string {
	lines := []string{valueStyle.Render(fmt.Sprintf("Recent activity (%s in the last day)", humanize.Comma(total)))}
	for _, row := range rows {
		lines = append(lines, fmt.Sprintf("%s  %-12s  %-20s  %s",
			row.Cells["created_at"], row.Cells["activity"], row.Cells["user.name"], row.Cells["content"]))
	}
	if len(rows) == 0 {
		lines = append(lines, labelStyle.Render("nothing yet"))
	}
	return strings.Join(lines, "\n")
}

func newExportCommand() *cobra.Command {
	var ids []uint

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the selected users to CSV",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := bootstrap(cmd, false, false)
			if err != nil {
				return err
			}
			defer rt.Close()

			started := time.Now()
			export, err := rt.app.Exporter.Run(cmd.Context(), ids)
			if err != nil {
				return err
			}

			size := "?"
			if info, err := rt.exports.Stat(export.FileName); err == nil {
				size = humanize.Bytes(uint64(info.Size()))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "export %d: %d of %d rows, %s, %s in %s\n",
				export.ID, export.SuccessfulRows, export.TotalRows,
				filepath.Join(rt.cfg.ExportRoot, export.FileName), size,
				time.Since(started).Round(time.Millisecond))
			return nil
		},
	}
	cmd.Flags().UintSliceVar(&ids, "ids", nil, "ID пользователей через запятую")
	return withStorage(cmd)
}

const (
	emailFlag    = "email"
	passwordFlag = "password"
)

var tokenFlags = map[string]cobraflags.Flag{
	emailFlag: &cobraflags.StringFlag{
		Name:  emailFlag,
		Value: "",
		Usage: "Email сотрудника",
	},
	passwordFlag: &cobraflags.StringFlag{
		Name:  passwordFlag,
		Value: "",
		Usage: "Пароль сотрудника",
	},
}

func newTokenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for a staff member",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := bootstrap(cmd, false, false)
			if err != nil {
				return err
			}
			defer rt.Close()

			staff, err := rt.app.Users.Authenticate(cmd.Context(),
				tokenFlags[emailFlag].GetString(), tokenFlags[passwordFlag].GetString())
			if err != nil {
				return err
			}

			token, err := auth.IssueToken(rt.cfg.JWTSecret, staff.ID, staff.Name, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cobraflags.RegisterMap(cmd, tokenFlags)
	return withStorage(cmd)
}
