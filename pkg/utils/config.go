// Copyright 2025 ACLDrain Authors
// SPDX-License-Identifier: Apache-2.0

package utils

import (
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

var (
	ConfigurationFileDirectory string
)

// LoadConfiguration merges an optional config file into viper and enables
// environment overrides. A missing file is fine; a file that exists but
// cannot be parsed is fatal.
func LoadConfiguration(configFileName string) {
	viper.SetConfigName(configFileName)
	viper.AddConfigPath(ConfigurationFileDirectory)
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.acldrain")
	viper.AddConfigPath("/usr/local/etc/acldrain/")
	viper.AddConfigPath("/etc/acldrain/")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.MergeInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Info().Msgf("Config file not found: %s", configFileName)
			return
		}
		log.Fatal().Err(err).Msgf("Failed to load config file: %s", configFileName)
	}
	log.Info().Msgf("Loaded config file: %s", viper.ConfigFileUsed())
}
