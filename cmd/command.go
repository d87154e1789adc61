// Copyright 2025 ACLDrain Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"os"

	"github.com/Likkrid/ec-redis-acl-monitoring/pkg/utils"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "acldrain",
	Short: "ACLDrain - Redis ACL log archiver",
	Long: `ACLDrain drains the ACL violation log from a Redis cluster, normalizes
each entry, and archives the batch to S3 before resetting the source log.
It is designed to run as a short-lived job on a schedule or on demand.`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&utils.ConfigurationFileDirectory, "config_dir", ".", "Directory for configuration files")
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
