// Package output writes the final hosts file header and regenerates the
// project readme from source metadata.
package output

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/hrshadhin/hosts/internal/errors"
	"github.com/hrshadhin/hosts/internal/utils"
)

const (
	projectHomeURL     = "https://github.com/hrshadhin/hosts"
	projectReleasesURL = "https://github.com/hrshadhin/hosts/releases"
	rawFileBaseURL     = "https://raw.githubusercontent.com/hrshadhin/hosts/master/"
)

// staticEntries are the fixed local/loopback rules placed above the body.
var staticEntries = []string{
	"127.0.0.1 localhost",
	"127.0.0.1 localhost.localdomain",
	"127.0.0.1 local",
	"255.255.255.255 broadcasthost",
	"::1 localhost",
	"::1 ip6-localhost",
	"::1 ip6-loopback",
	"fe80::1%lo0 localhost",
	"ff00::0 ip6-localnet",
	"ff00::0 ip6-mcastprefix",
	"ff02::1 ip6-allnodes",
	"ff02::2 ip6-allrouters",
	"ff02::3 ip6-allhosts",
	"0.0.0.0 0.0.0.0",
}

// Overridable for tests.
var (
	goos       = runtime.GOOS
	hostnameFn = os.Hostname
)

var countPrinter = message.NewPrinter(language.English)

// HeaderOptions configures the opening header of the final hosts file.
type HeaderOptions struct {
	// NumberOfRules is the unique-domain count reported in the banner.
	NumberOfRules int
	// OutputDirectory and OutputFile build the raw-file provenance URL.
	OutputDirectory string
	OutputFile      string
	// SkipStaticHosts leaves out the static localhost entries.
	SkipStaticHosts bool
	// EmptyTargetIP suppresses the custom preamble, which only makes sense
	// for address-prefixed output.
	EmptyTargetIP bool
	// CustomHostsFile is copied verbatim after the static entries when it
	// exists. Missing means no preamble.
	CustomHostsFile string
	// Now is the generation timestamp; the zero value means current UTC time.
	Now time.Time
}

// WriteHeader writes the opening header to w, followed by the merged body.
func WriteHeader(w io.Writer, body io.Reader, opts HeaderOptions) error {
	now := opts.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	writer := bufio.NewWriter(w)

	writeBanner(writer, now, opts)

	if !opts.SkipStaticHosts {
		writeStaticHosts(writer)
	}

	if !opts.EmptyTargetIP && utils.FileExists(opts.CustomHostsFile) {
		preamble, err := os.ReadFile(opts.CustomHostsFile)
		if err != nil {
			return errors.NewOutputError("failed to read custom hosts file", err)
		}
		writer.Write(preamble)
		writer.WriteString("\n")
	}

	if _, err := io.Copy(writer, body); err != nil {
		return errors.NewOutputError("failed to write hosts file body", err)
	}

	if err := writer.Flush(); err != nil {
		return errors.NewOutputError("failed to write hosts file header", err)
	}
	return nil
}

func writeBanner(writer *bufio.Writer, now time.Time, opts HeaderOptions) {
	writer.WriteString("# Title: hrshadhin/hosts\n#\n")
	writer.WriteString("# This hosts file is a merged collection of hosts from reputable sources,\n")
	writer.WriteString("# with a dash of crowd sourcing via GitHub\n#\n")
	fmt.Fprintf(writer, "# Date: %s\n", now.Format("02 January 2006 15:04:05 (MST)"))
	fmt.Fprintf(writer, "# Number of unique domains: %s\n#\n", countPrinter.Sprintf("%d", opts.NumberOfRules))

	filePath := strings.ReplaceAll(opts.OutputDirectory, "\\", "/")
	if len(filePath) > 0 {
		filePath += "/"
	}
	filePath += opts.OutputFile

	fmt.Fprintf(writer, "# Fetch the latest version of this file: %s%s\n", rawFileBaseURL, filePath)
	fmt.Fprintf(writer, "# Project home page: %s\n", projectHomeURL)
	fmt.Fprintf(writer, "# Project releases: %s\n", projectReleasesURL)
	writer.WriteString("# ===============================================================\n")
	writer.WriteString("\n")
}

func writeStaticHosts(writer *bufio.Writer) {
	for _, entry := range staticEntries {
		writer.WriteString(entry + "\n")
	}

	if goos == "linux" {
		if hostname, err := hostnameFn(); err == nil {
			writer.WriteString("127.0.1.1 " + hostname + "\n")
			writer.WriteString("127.0.0.53 " + hostname + "\n")
		}
	}

	writer.WriteString("\n")
}
