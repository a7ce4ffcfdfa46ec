package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/valyala/fasttemplate"

	"github.com/hrshadhin/hosts/internal/errors"
	"github.com/hrshadhin/hosts/internal/sources"
)

// ReadmeOptions configures readme regeneration.
type ReadmeOptions struct {
	ReadmeFile         string
	TemplateFile       string
	SourcePath         string
	SourceInfoFileName string
	NumberOfRules      int
	// Now is the generation timestamp; the zero value means current UTC time.
	Now time.Time
}

// UpdateReadme rewrites the readme from its template, substituting the
// @GEN_DATE@, @NUM_ENTRIES@ and @SOURCEROWS@ placeholders. Source rows are
// built from the per-source metadata in SortSources order.
func UpdateReadme(opts ReadmeOptions) error {
	now := opts.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	infos, err := sources.LoadAllInfo(opts.SourcePath, opts.SourceInfoFileName)
	if err != nil {
		return errors.NewOutputError("failed to load source metadata", err)
	}

	templateText, err := os.ReadFile(opts.TemplateFile)
	if err != nil {
		return errors.NewOutputError("failed to read readme template", err)
	}

	template, err := fasttemplate.NewTemplate(string(templateText), "@", "@")
	if err != nil {
		return errors.NewOutputError("failed to parse readme template", err)
	}

	values := map[string]string{
		"GEN_DATE":    now.Format("January 02 2006"),
		"NUM_ENTRIES": countPrinter.Sprintf("%d", opts.NumberOfRules),
		"SOURCEROWS":  buildSourceRows(infos),
	}

	readme := template.ExecuteFuncString(func(w io.Writer, tag string) (int, error) {
		if value, known := values[tag]; known {
			return w.Write([]byte(value))
		}
		// Not a placeholder of ours, put the tag back.
		return w.Write([]byte("@" + tag + "@"))
	})

	if err := os.WriteFile(opts.ReadmeFile, []byte(readme), 0644); err != nil {
		return errors.NewOutputError("failed to write readme", err)
	}
	return nil
}

func buildSourceRows(infos []*sources.Info) string {
	var rows strings.Builder
	for _, info := range infos {
		fmt.Fprintf(&rows, "%s | %s |[link](%s) | [raw](%s) | %s | %s | [issues](%s)\n",
			info.Name, info.Description, info.HomeURL, info.URL, info.Frequency, info.License, info.Issues)
	}
	return rows.String()
}
