package commands

import (
	"flag"
	"io"
	"os"

	"github.com/hrshadhin/hosts/internal/config"
	"github.com/hrshadhin/hosts/internal/merge"
	"github.com/hrshadhin/hosts/internal/output"
	"github.com/hrshadhin/hosts/internal/rules"
	"github.com/hrshadhin/hosts/internal/sources"
	"github.com/hrshadhin/hosts/internal/utils"
)

func CreateReadmeCommand() *ReadmeCommand {
	gc := &ReadmeCommand{
		fs: flag.NewFlagSet("readme", flag.ExitOnError),
	}
	return gc
}

type ReadmeCommand struct {
	fs  *flag.FlagSet
	cfg *config.Config
}

func (g *ReadmeCommand) Name() string {
	return g.fs.Name()
}

func (g *ReadmeCommand) Init(args []string, ctx *AppContext) error {
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

func (g *ReadmeCommand) Run() error {
	cfg := g.cfg

	// The rule count is not persisted between runs, so recount with a dry
	// merge over the current caches.
	stats, err := g.dryMerge()
	if err != nil {
		return err
	}

	return output.UpdateReadme(output.ReadmeOptions{
		ReadmeFile:         cfg.GetAbsPath(cfg.General.ReadmeFile),
		TemplateFile:       cfg.GetAbsPath(cfg.General.ReadmeTemplate),
		SourcePath:         cfg.GetAbsSourcePath(),
		SourceInfoFileName: cfg.General.SourceInfoFileName,
		NumberOfRules:      stats.NumberOfRules,
	})
}

func (g *ReadmeCommand) dryMerge() (*merge.Stats, error) {
	cfg := g.cfg

	exclusionRegexes, err := rules.NewExclusionRegexes(cfg.General.CommonExclusions)
	if err != nil {
		return nil, err
	}
	words, err := config.LoadWhiteList(cfg.GetAbsPath(cfg.General.WhiteListFile))
	if err != nil {
		return nil, err
	}

	staging, err := sources.CreateStagingFile(cfg, cfg.GetAbsPath(cfg.General.BlackListFile))
	if err != nil {
		return nil, err
	}
	defer func() {
		name := staging.Name()
		utils.CloseOrWarn(staging)
		_ = os.Remove(name)
	}()

	return merge.Merge(staging, io.Discard, merge.Options{
		TargetIP:         cfg.General.TargetIP,
		ExclusionRegexes: exclusionRegexes,
		ExclusionWords:   rules.CompileExclusionWords(words),
	})
}
