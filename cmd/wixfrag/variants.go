package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/kolide/wixfrag/pkg/packaging"
)

func runVariants(_args []string) error {
	return listVariants(os.Stdout)
}

func listVariants(outFH io.Writer) error {
	fmt.Fprintf(outFH, "Built in variants\n")
	fmt.Fprintf(outFH, "Select one with `generate -variant <name>`. Any column can be overridden by flag.\n")
	fmt.Fprintf(outFH, "\n")

	w := tabwriter.NewWriter(outFH, 0, 4, 4, ' ', 0)
	fmt.Fprintf(w, "NAME\tPREFIX\tWIN64\tSTAGING ROOT\tDIRECTORIES\tFEATURES\tEXTRAS\n")

	for _, name := range packaging.KnownVariants() {
		v, err := packaging.VariantFromString(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%d\n",
			v.Name,
			v.Prefix(),
			v.Win64,
			v.StagingRoot,
			v.DirectoriesFile,
			v.FeaturesFile,
			len(v.Extras),
		)
	}

	return w.Flush()
}
