package commands

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hrshadhin/hosts/internal/config"
	"github.com/hrshadhin/hosts/internal/errors"
	"github.com/hrshadhin/hosts/internal/log"
	"github.com/hrshadhin/hosts/internal/merge"
	"github.com/hrshadhin/hosts/internal/output"
	"github.com/hrshadhin/hosts/internal/rules"
	"github.com/hrshadhin/hosts/internal/sources"
	"github.com/hrshadhin/hosts/internal/utils"
)

func CreateGenerateCommand() *GenerateCommand {
	gc := &GenerateCommand{
		fs: flag.NewFlagSet("generate", flag.ExitOnError),
	}

	gc.fs.StringVar(&gc.targetIP, "ip", "", "Target IP address (overrides the configured one)")
	gc.fs.BoolVar(&gc.emptyTargetIP, "empty-target-ip", false, "Remove target IP, keep only host names")
	gc.fs.BoolVar(&gc.skipStaticHosts, "skip-static-hosts", false, "Skip static localhost entries in the final hosts file")
	gc.fs.BoolVar(&gc.noUpdate, "no-update", false, "Don't update from host data sources")
	gc.fs.BoolVar(&gc.noUpdateReadme, "no-update-readme", false, "Skip updating the readme file")
	gc.fs.StringVar(&gc.outputFile, "output-file", "", "Output file name for the generated hosts file")
	gc.fs.StringVar(&gc.outputDirectory, "output-directory", "", "Output sub-directory for the generated hosts file")
	gc.fs.BoolVar(&gc.minimise, "minimise", false, "Minimise the hosts file, dropping empty lines and comments")
	gc.fs.StringVar(&gc.whiteListFile, "whitelist", "", "Whitelist file to use while generating the hosts file")
	gc.fs.StringVar(&gc.blackListFile, "blacklist", "", "Blacklist file to use while generating the hosts file")

	return gc
}

type GenerateCommand struct {
	fs  *flag.FlagSet
	cfg *config.Config

	targetIP        string
	emptyTargetIP   bool
	skipStaticHosts bool
	noUpdate        bool
	noUpdateReadme  bool
	outputFile      string
	outputDirectory string
	minimise        bool
	whiteListFile   string
	blackListFile   string
}

func (g *GenerateCommand) Name() string {
	return g.fs.Name()
}

func (g *GenerateCommand) Init(args []string, ctx *AppContext) error {
	if err := g.fs.Parse(args); err != nil {
		return err
	}

	if cfg, err := loadConfigOrFail(ctx.ConfigPath); err != nil {
		return err
	} else {
		g.cfg = cfg
	}

	return nil
}

func (g *GenerateCommand) Run() error {
	cfg := g.cfg

	if !g.noUpdate {
		if err := sources.UpdateAll(cfg); err != nil {
			return err
		}
	}

	opts, err := g.mergeOptions()
	if err != nil {
		return err
	}

	staging, err := sources.CreateStagingFile(cfg, g.resolvedBlackList())
	if err != nil {
		return err
	}
	defer func() {
		name := staging.Name()
		utils.CloseOrWarn(staging)
		_ = os.Remove(name)
	}()

	var body bytes.Buffer
	stats, err := merge.Merge(staging, &body, opts)
	if err != nil {
		return err
	}

	outputDir := cfg.GetAbsPath(g.outputDirectory)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return errors.NewOutputError("failed to create output directory", err)
	}

	outputFile := g.outputFile
	if outputFile == "" {
		outputFile = cfg.General.HostsFileName
	}
	outputPath := filepath.Join(outputDir, outputFile)

	finalFile, err := os.Create(outputPath)
	if err != nil {
		return errors.NewOutputError("failed to create output file", err)
	}
	defer utils.CloseOrWarn(finalFile)

	headerOpts := output.HeaderOptions{
		NumberOfRules:   stats.NumberOfRules,
		OutputDirectory: g.outputDirectory,
		OutputFile:      outputFile,
		SkipStaticHosts: g.skipStaticHosts,
		EmptyTargetIP:   g.emptyTargetIP,
		CustomHostsFile: cfg.GetAbsPath(cfg.General.CustomHostsFile),
	}
	if err := output.WriteHeader(finalFile, &body, headerOpts); err != nil {
		return err
	}

	if !g.noUpdateReadme {
		readmeOpts := output.ReadmeOptions{
			ReadmeFile:         cfg.GetAbsPath(cfg.General.ReadmeFile),
			TemplateFile:       cfg.GetAbsPath(cfg.General.ReadmeTemplate),
			SourcePath:         cfg.GetAbsSourcePath(),
			SourceInfoFileName: cfg.General.SourceInfoFileName,
			NumberOfRules:      stats.NumberOfRules,
		}
		if err := output.UpdateReadme(readmeOpts); err != nil {
			return err
		}
	}

	log.Infof("Success! The hosts file has been saved in folder %s", outputDir)
	log.Infof("It contains %d unique entries.", stats.NumberOfRules)

	return nil
}

// mergeOptions assembles the merge run options from config and flags.
func (g *GenerateCommand) mergeOptions() (merge.Options, error) {
	cfg := g.cfg

	targetIP := cfg.General.TargetIP
	if g.targetIP != "" {
		targetIP = g.targetIP
	}
	if g.emptyTargetIP {
		targetIP = ""
	}

	exclusionRegexes, err := rules.NewExclusionRegexes(cfg.General.CommonExclusions)
	if err != nil {
		return merge.Options{}, errors.NewConfigError("invalid common exclusions", err)
	}

	whiteListFile := g.whiteListFile
	if whiteListFile == "" {
		whiteListFile = cfg.GetAbsPath(cfg.General.WhiteListFile)
	}
	words, err := config.LoadWhiteList(whiteListFile)
	if err != nil {
		return merge.Options{}, fmt.Errorf("failed to load whitelist: %v", err)
	}

	return merge.Options{
		TargetIP:         targetIP,
		Minimise:         g.minimise,
		ExclusionRegexes: exclusionRegexes,
		ExclusionWords:   rules.CompileExclusionWords(words),
	}, nil
}

func (g *GenerateCommand) resolvedBlackList() string {
	if g.blackListFile != "" {
		return g.blackListFile
	}
	return g.cfg.GetAbsPath(g.cfg.General.BlackListFile)
}
