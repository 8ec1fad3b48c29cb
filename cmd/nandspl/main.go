// Command nandspl inspects NAND boot media and runs the SPL image loader
// against a raw dump or a memory-mapped controller.
//
//	nandspl info  --board board.yaml [--dump nand.bin]
//	nandspl scan  --board board.yaml --dump nand.bin
//	nandspl load  --board board.yaml --dump nand.bin --offset 0x4000 --length 256KiB --out u-boot.bin
//	nandspl boot  --board board.yaml --dump nand.bin --out-dir out/
//	nandspl mkdump --board board.yaml --image u-boot.bin --offset 0x4000 --out nand.bin --bad 0,7
package main

import (
	"flag"
	"os"

	"github.com/golang/glog"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "nandspl",
	Short:         "NAND secondary program loader tool",
	Long:          "Load boot images out of raw NAND flash with bad-block skipping and ECC correction, from a nanddump --oob image or a memory-mapped controller.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)
	addDeviceFlags(rootCmd)
	rootCmd.AddCommand(infoCmd, scanCmd, loadCmd, bootCmd, mkdumpCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		glog.Errorf("%v", err)
		glog.Flush()
		os.Exit(1)
	}
	glog.Flush()
}
