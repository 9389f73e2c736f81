package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/joebot/discordbridge/internal/bridge"
	"github.com/joebot/discordbridge/internal/config"
)

// PrintStatus shows where settings point and whether the pieces exist.
func PrintStatus(w io.Writer, cfg *config.Config) {
	bridgePath := cfg.BridgeConfigPath()

	fmt.Fprintln(w)
	fmt.Fprintln(w, Title("Status"))
	fmt.Fprintln(w)

	fmt.Fprintf(w, "  %-14s %s  %s\n", "Bridge config", StatusBadge(fileExists(bridgePath)), DimStyle.Render(bridgePath))
	if logPath := cfg.LogPath(); logPath != "" {
		fmt.Fprintf(w, "  %-14s %s  %s\n", "Log file", StatusBadge(true), DimStyle.Render(logPath))
	}
	fmt.Fprintf(w, "  %-14s %s\n", "Log level", cfg.Log.Level)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "  "+BoldStyle.Render("Sides"))
	fmt.Fprintf(w, "    %s  Discord  %s\n", StatusBadge(cfg.Discord.Enabled && cfg.Discord.Token != ""), DimStyle.Render(discordNote(cfg.Discord)))
	fmt.Fprintf(w, "    %s  err      %s\n", StatusBadge(true), DimStyle.Render(cfg.Err.Identity))
	fmt.Fprintln(w)
}

func discordNote(d config.DiscordConfig) string {
	switch {
	case !d.Enabled:
		return "disabled"
	case d.Token == "":
		return "no bot token"
	default:
		return "intents " + strconv.Itoa(d.Intents)
	}
}

// PrintCheck reports the outcome of loading a bridge config. It returns
// false when the config is unusable.
func PrintCheck(w io.Writer, path string, cfg *bridge.Config, err error) bool {
	fmt.Fprintln(w, "  "+BoldStyle.Render("Bridge rules")+"  "+DimStyle.Render(path))

	var ve *bridge.ValidationError
	switch {
	case errors.As(err, &ve):
		for _, v := range ve.Violations {
			fmt.Fprintln(w, "    "+ErrStyle.Render("✗ "+v))
		}
		fmt.Fprintln(w)
		return false
	case err != nil:
		fmt.Fprintln(w, "    "+ErrStyle.Render("✗ "+err.Error()))
		fmt.Fprintln(w)
		return false
	}

	t := cfg.Destinations()
	fmt.Fprintf(w, "    %s  %d one-way, %d two-way, %d reply\n", OkStyle.Render("✓"), len(cfg.OneWay), len(cfg.TwoWay), len(cfg.Reply))
	fmt.Fprintf(w, "    %s  %d routing keys\n", OkStyle.Render("✓"), t.Len())
	for _, key := range t.Overrides() {
		fmt.Fprintln(w, "    "+WarnStyle.Render("! "+string(key)+" is declared more than once, the last rule wins"))
	}
	fmt.Fprintln(w)
	return true
}

// RenderRoutes renders the compiled destination table, one row per key.
func RenderRoutes(t *bridge.Table) string {
	rows := make([][]string, 0, t.Len())
	for _, e := range t.Entries() {
		dst := e.Route.Target()
		kind := string(e.Route.Kind())
		if r, ok := e.Route.(bridge.ReplyRoute); ok {
			kind += " (" + string(r.Mode) + ")"
		}
		rows = append(rows, []string{
			string(e.Key),
			kind,
			string(dst.Key()),
			dst.MessageTemplate.String(),
			flags(dst),
		})
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(Accent).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(DimStyle).
		Headers("KEY", "TYPE", "DESTINATION", "TEMPLATE", "ALLOW").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Render()
}

func flags(d bridge.DestinationOptions) string {
	var on []string
	if d.AllowImages {
		on = append(on, "images")
	}
	if d.AllowLinks {
		on = append(on, "links")
	}
	if d.AllowThreads {
		on = append(on, "threads")
	}
	if len(on) == 0 {
		return "-"
	}
	return strings.Join(on, ",")
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
