// ABOUTME: Offline CLI for the cluster sizer
// ABOUTME: Runs sizing plans from JSON files without the HTTP service

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ronenav/sizer/catalog"
	"github.com/ronenav/sizer/models"
	"github.com/ronenav/sizer/services"
)

var (
	workloadsFile   string
	machineSetsFile string
	platform        string
	output          string
)

func main() {
	root := &cobra.Command{
		Use:   "sizer",
		Short: "Compute Kubernetes/OpenShift cluster sizing plans",
	}

	sizeCmd := &cobra.Command{
		Use:   "size",
		Short: "Size a set of workloads against a platform or machine-set file",
		RunE:  runSize,
	}
	sizeCmd.Flags().StringVarP(&workloadsFile, "file", "f", "", "workloads JSON file (required)")
	sizeCmd.Flags().StringVarP(&machineSetsFile, "machinesets", "m", "", "machine sets JSON file")
	sizeCmd.Flags().StringVarP(&platform, "platform", "p", catalog.AWS, "target platform")
	sizeCmd.Flags().StringVarP(&output, "output", "o", "table", "output format: table or json")
	sizeCmd.MarkFlagRequired("file")

	platformsCmd := &cobra.Command{
		Use:   "platforms",
		Short: "List supported platforms and their default instances",
		RunE:  runPlatforms,
	}

	root.AddCommand(sizeCmd, platformsCmd)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runSize(cmd *cobra.Command, args []string) error {
	var workloads []models.WorkloadDescriptor
	if err := readJSONFile(workloadsFile, &workloads); err != nil {
		return fmt.Errorf("reading workloads: %w", err)
	}

	var machineSets []models.MachineSet
	if machineSetsFile != "" {
		if err := readJSONFile(machineSetsFile, &machineSets); err != nil {
			return fmt.Errorf("reading machine sets: %w", err)
		}
	}

	sizing, err := services.NewSizer(nil).Size(workloads, platform, machineSets)
	if err != nil {
		return err
	}

	if output == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(sizing)
	}
	printSizing(cmd, sizing)
	return nil
}

func printSizing(cmd *cobra.Command, sizing models.ClusterSizing) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Nodes: %d  Zones: %d  Total: %d cpu / %d GB\n",
		sizing.NodeCount, sizing.Zones, sizing.TotalCPU, sizing.TotalMemory)
	fmt.Fprintf(out, "Cluster risk: %s\n\n", sizing.OverCommit.RiskLevel)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NODE\tZONE\tMACHINESET\tCPU\tMEMORY\tSERVICES\tRISK")
	for _, node := range sizing.Nodes {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%d\t%d\t%d\t%s\n",
			node.ID, node.Zone, node.MachineSet, node.CPUUnits, node.Memory,
			len(node.Services), node.Usage.RiskLevel)
	}
	tw.Flush()
}

func runPlatforms(cmd *cobra.Command, args []string) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PLATFORM\tDEFAULT INSTANCE\tCPU\tMEMORY")
	for _, name := range catalog.Platforms() {
		inst := catalog.DefaultInstanceForPlatform(name)
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", name, inst.Name, inst.CPUUnits, inst.Memory)
	}
	return tw.Flush()
}

func readJSONFile(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
