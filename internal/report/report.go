package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/jimezsa/czynsz/internal/listing"
	"github.com/muesli/termenv"
)

type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatTSV   Format = "tsv"
)

type WriteOptions struct {
	ColorEnabled bool
	Hyperlinks   bool
}

// WriteResult prints the decisions of one pipeline run.
func WriteResult(w io.Writer, result *listing.Result, format Format, opts WriteOptions) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case FormatTSV:
		return writeTSV(w, result.Decisions)
	default:
		return writeTable(w, result.Decisions, opts)
	}
}

// Summary is the one-line closing note of a run.
func Summary(result *listing.Result) string {
	kept := result.Accepted()
	return fmt.Sprintf("summary: site=%s listings=%d kept=%d dropped=%d artifact=%s",
		result.Site, len(result.Decisions), kept, len(result.Decisions)-kept, result.Artifact)
}

func writeTSV(w io.Writer, decisions []listing.Decision) error {
	writer := csv.NewWriter(w)
	writer.Comma = '\t'
	if err := writer.Write([]string{"position", "listed", "hidden", "total", "status", "url"}); err != nil {
		return err
	}
	for _, d := range decisions {
		row := []string{
			strconv.Itoa(d.Position),
			strconv.Itoa(d.Listed),
			strconv.Itoa(d.Hidden),
			strconv.Itoa(d.Total),
			status(d),
			d.URL,
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func writeTable(w io.Writer, decisions []listing.Decision, opts WriteOptions) error {
	if len(decisions) == 0 {
		_, err := fmt.Fprintln(w, "No listings.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tlisted\thidden\ttotal\tstatus\turl")
	output := termenv.NewOutput(w)
	for _, d := range decisions {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%d\t%s\t%s\n",
			d.Position, d.Listed, hiddenCell(d), d.Total, status(d), linkCell(d.URL, output, opts))
	}
	return tw.Flush()
}

func status(d listing.Decision) string {
	if d.Accepted {
		return "kept"
	}
	return "dropped"
}

func hiddenCell(d listing.Decision) string {
	if d.FeeSkipped {
		return "-"
	}
	return strconv.Itoa(d.Hidden)
}

func linkCell(raw string, output *termenv.Output, opts WriteOptions) string {
	const linkColor = "#87CEEB"

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "-"
	}
	label := raw
	if opts.Hyperlinks {
		label = shortURLLabel(raw)
	}
	if opts.ColorEnabled {
		label = output.String(label).Foreground(output.Color(linkColor)).String()
	}
	if opts.Hyperlinks {
		label = hyperlink(raw, label)
	}
	return label
}

func hyperlink(url string, text string) string {
	const esc = "\x1b"
	return esc + "]8;;" + url + esc + "\\" + text + esc + "]8;;" + esc + "\\"
}

func shortURLLabel(raw string) string {
	const maxLen = 60
	label := raw
	if parsed, err := url.Parse(raw); err == nil {
		if host := strings.TrimPrefix(parsed.Host, "www."); host != "" {
			label = host + parsed.Path
		}
	}
	if runes := []rune(label); len(runes) > maxLen {
		label = string(runes[:maxLen-3]) + "..."
	}
	return label
}
