// Copyright 2026 sorrel Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"github.com/go-playground/validator/v10"
	"github.com/juju/errors"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/sorrel-io/sorrel/base/log"
	"github.com/sorrel-io/sorrel/model"
)

// Config is the configuration of the recommendation pipeline.
type Config struct {
	Data      DataConfig      `mapstructure:"data"`
	Recommend RecommendConfig `mapstructure:"recommend"`
	KNN       KNNConfig       `mapstructure:"knn"`
	Eval      EvalConfig      `mapstructure:"eval"`
}

// DataConfig is the configuration of input files.
type DataConfig struct {
	// path of the train feedback file
	TrainPath string `mapstructure:"train_path" validate:"required"`
	// path of the test feedback file, evaluation is skipped when empty
	TestPath string `mapstructure:"test_path"`
	// path of the precomputed item-item similarity file
	SimilarityPath string `mapstructure:"similarity_path"`
	// field separator of the input files
	Sep string `mapstructure:"sep" validate:"required"`
	// load every feedback value as 1
	AsBinary bool `mapstructure:"as_binary"`
}

// RecommendConfig is the configuration of ranking prediction.
type RecommendConfig struct {
	// name of the recommendation model
	Model string `mapstructure:"model" validate:"oneof=item_knn content_based"`
	// recommendations returned per user
	RankLength int `mapstructure:"rank_length" validate:"gte=1"`
	// path of the ranking output file, writing is skipped when empty
	OutputPath string `mapstructure:"output_path"`
	// field separator of the ranking output file
	OutputSep string `mapstructure:"output_sep" validate:"required"`
	// number of concurrent workers
	Jobs int `mapstructure:"jobs" validate:"gte=1"`
}

// KNNConfig is the configuration of the item based KNN model.
type KNNConfig struct {
	// size of the neighborhood, 0 derives floor(sqrt(n_items))
	KNeighbors int `mapstructure:"k_neighbors" validate:"gte=0"`
	// name of the similarity metric
	Similarity string `mapstructure:"similarity" validate:"oneof=cosine msd pearson"`
	// restrict scoring to the static neighbor index
	SimilarFirst bool `mapstructure:"similar_first"`
}

// EvalConfig is the configuration of ranking evaluation.
type EvalConfig struct {
	// cutoffs evaluated against the test feedback
	Ranks []int `mapstructure:"ranks" validate:"min=1,dive,gte=1"`
}

// GetDefaultConfig returns the default configuration.
func GetDefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			Sep: "\t",
		},
		Recommend: RecommendConfig{
			Model:      model.ModelItemKNN,
			RankLength: 10,
			OutputSep:  "\t",
			Jobs:       1,
		},
		KNN: KNNConfig{
			Similarity:   model.SimCosine,
			SimilarFirst: true,
		},
		Eval: EvalConfig{
			Ranks: []int{1, 3, 5, 10},
		},
	}
}

func setDefault() {
	defaultConfig := GetDefaultConfig()
	// [data]
	viper.SetDefault("data.sep", defaultConfig.Data.Sep)
	viper.SetDefault("data.as_binary", defaultConfig.Data.AsBinary)
	// [recommend]
	viper.SetDefault("recommend.model", defaultConfig.Recommend.Model)
	viper.SetDefault("recommend.rank_length", defaultConfig.Recommend.RankLength)
	viper.SetDefault("recommend.output_sep", defaultConfig.Recommend.OutputSep)
	viper.SetDefault("recommend.jobs", defaultConfig.Recommend.Jobs)
	// [knn]
	viper.SetDefault("knn.k_neighbors", defaultConfig.KNN.KNeighbors)
	viper.SetDefault("knn.similarity", defaultConfig.KNN.Similarity)
	viper.SetDefault("knn.similar_first", defaultConfig.KNN.SimilarFirst)
	// [eval]
	viper.SetDefault("eval.ranks", defaultConfig.Eval.Ranks)
}

// LoadConfig loads the configuration from a TOML file.
func LoadConfig(path string) (*Config, error) {
	// set default config
	setDefault()
	// bind environment variables
	bindEnv := func(key, env string) {
		if err := viper.BindEnv(key, env); err != nil {
			log.Logger().Fatal("failed to bind environment variable",
				zap.String("env", env), zap.Error(err))
		}
	}
	bindEnv("data.train_path", "SORREL_TRAIN_PATH")
	bindEnv("data.test_path", "SORREL_TEST_PATH")
	bindEnv("data.similarity_path", "SORREL_SIMILARITY_PATH")
	bindEnv("recommend.output_path", "SORREL_OUTPUT_PATH")
	bindEnv("recommend.jobs", "SORREL_JOBS")
	// load config file
	viper.SetConfigType("toml")
	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		return nil, errors.Trace(err)
	}
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, errors.Trace(err)
	}
	return &config, nil
}

// Validate validates the configuration.
func (config *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return errors.Trace(err)
	}
	if config.Recommend.Model == model.ModelContentBased && config.Data.SimilarityPath == "" {
		return errors.New("data.similarity_path is required by the content based model")
	}
	return nil
}

// GetParams returns the hyper-parameters of the configured model.
func (config *Config) GetParams() model.Params {
	return model.Params{
		model.KNeighbors:   config.KNN.KNeighbors,
		model.Similarity:   config.KNN.Similarity,
		model.SimilarFirst: config.KNN.SimilarFirst,
		model.RankLength:   config.Recommend.RankLength,
	}
}
