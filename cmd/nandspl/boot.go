package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/moffa90/go-nandspl/geometry"
	"github.com/moffa90/go-nandspl/spl"
)

var bootFlags struct {
	outDir string
	reset  bool
}

var bootCmd = &cobra.Command{
	Use:   "boot",
	Short: "Run the SPL boot sequence against the board layout",
	Long: `Load the firmware image and the environment copies listed in the board
file, the same way the SPL does before jumping to the image. Each region is
written to <out-dir>/<name>.bin. A failing environment is reported but does
not stop the boot.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		board, err := loadBoard()
		if err != nil {
			return err
		}
		img, ok := board.Find(geometry.KindImage)
		if !ok {
			return fmt.Errorf("board has no %q region", geometry.KindImage)
		}

		loader, closer, err := newLoader(board,
			spl.WithResetOnBoot(bootFlags.reset),
			spl.WithProgressCallback(logProgress),
		)
		if err != nil {
			return err
		}
		defer closer()

		targets := spl.BootTargets{Image: make([]byte, img.Size)}
		env, hasEnv := board.Find(geometry.KindEnv)
		if hasEnv {
			size := env.Size
			if redund, ok := board.Find(geometry.KindEnvRedund); ok {
				size += redund.Size
			}
			targets.Env = make([]byte, size)
		}

		report, err := loader.Boot(context.Background(), board, targets)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		printReport(out, img.Name, report.Image)
		if err := writeRegion(img.Name, targets.Image); err != nil {
			return err
		}

		if report.EnvErr != nil {
			glog.Warningf("environment not loaded, continuing with defaults: %v", report.EnvErr)
		}
		if report.Env != nil {
			printReport(out, env.Name, report.Env)
			if err := writeRegion(env.Name, targets.Env[:env.Size]); err != nil {
				return err
			}
		}
		if report.EnvRedund != nil {
			redund, _ := board.Find(geometry.KindEnvRedund)
			printReport(out, redund.Name, report.EnvRedund)
			if err := writeRegion(redund.Name, targets.Env[env.Size:]); err != nil {
				return err
			}
		}

		fmt.Fprintf(out, "boot sequence finished in %v, entry point 0x%X\n", report.Elapsed, img.LoadAddr)
		return nil
	},
}

func init() {
	f := bootCmd.Flags()
	f.StringVar(&bootFlags.outDir, "out-dir", ".", "directory receiving <name>.bin for each loaded region")
	f.BoolVar(&bootFlags.reset, "reset", true, "reset the chip before loading")
}

func writeRegion(name string, data []byte) error {
	path := filepath.Join(bootFlags.outDir, name+".bin")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	glog.Infof("wrote %s (%d bytes)", path, len(data))
	return nil
}
