// Copyright 2026 sorrel Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package engine wires datasets, models and evaluation into the batch
// recommendation pipeline driven by the command line.
package engine

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/juju/errors"
	"github.com/olekukonko/tablewriter"
	"go.uber.org/zap"

	"github.com/sorrel-io/sorrel/base/log"
	"github.com/sorrel-io/sorrel/config"
	"github.com/sorrel-io/sorrel/dataset"
	"github.com/sorrel-io/sorrel/model"
)

// Run executes the batch pipeline described by the configuration: load the
// train set, fit the configured model, predict rank lists for every user and
// optionally write them to disk and evaluate them against a test set.
func Run(conf *config.Config) error {
	if err := conf.Validate(); err != nil {
		return errors.Trace(err)
	}
	// load train set
	loadStart := time.Now()
	trainSet, err := dataset.LoadDataFromCSV(conf.Data.TrainPath, conf.Data.Sep, conf.Data.AsBinary)
	if err != nil {
		return errors.Trace(err)
	}
	log.Logger().Info("load train set complete",
		zap.String("train_path", conf.Data.TrainPath),
		zap.Int("n_users", trainSet.UserCount()),
		zap.Int("n_items", trainSet.ItemCount()),
		zap.Int("n_feedback", trainSet.Count()),
		zap.String("load_time", time.Since(loadStart).String()))
	// create model
	recommender, err := model.NewItemRecommender(conf.Recommend.Model, conf.GetParams())
	if err != nil {
		return errors.Trace(err)
	}
	if contentBased, ok := recommender.(*model.ContentBased); ok {
		similarities, err := dataset.LoadSimilarityFromCSV(conf.Data.SimilarityPath, conf.Data.Sep)
		if err != nil {
			return errors.Trace(err)
		}
		contentBased.SetSimilarities(similarities)
	}
	// fit and predict
	if err = recommender.Fit(trainSet, model.NewFitConfig().SetJobs(conf.Recommend.Jobs)); err != nil {
		return errors.Trace(err)
	}
	ranking, err := recommender.Predict(conf.Recommend.Jobs)
	if err != nil {
		return errors.Trace(err)
	}
	// write ranking
	if conf.Recommend.OutputPath != "" {
		if err = WriteRanking(conf.Recommend.OutputPath, conf.Recommend.OutputSep, ranking); err != nil {
			return errors.Trace(err)
		}
		log.Logger().Info("write ranking complete",
			zap.String("output_path", conf.Recommend.OutputPath),
			zap.Int("n_scores", len(ranking)))
	}
	// evaluate
	if conf.Data.TestPath != "" {
		evalStart := time.Now()
		testSet, err := dataset.LoadDataFromCSV(conf.Data.TestPath, conf.Data.Sep, conf.Data.AsBinary)
		if err != nil {
			return errors.Trace(err)
		}
		scores := model.Evaluate(ranking, testSet, conf.Eval.Ranks, conf.Recommend.Jobs,
			model.Precision, model.Recall, model.NDCG, model.MAP, model.MRR, model.HR)
		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"N", "Precision", "Recall", "NDCG", "MAP", "MRR", "HR"})
		for i, n := range conf.Eval.Ranks {
			row := []string{fmt.Sprintf("@%d", n)}
			for _, score := range scores[i] {
				row = append(row, strconv.FormatFloat(float64(score), 'f', 6, 32))
			}
			table.Append(row)
		}
		table.Render()
		log.Logger().Info("evaluate complete",
			zap.String("test_path", conf.Data.TestPath),
			zap.Int("n_test_users", testSet.UserCount()),
			zap.String("eval_time", time.Since(evalStart).String()))
	}
	return nil
}

// WriteRanking writes predicted scores to a delimited text file, one line per
// score in ranking order.
func WriteRanking(path, sep string, ranking []model.Score) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Trace(err)
	}
	defer file.Close()
	writer := bufio.NewWriter(file)
	for _, score := range ranking {
		if _, err = writer.WriteString(score.UserId + sep + score.ItemId + sep +
			strconv.FormatFloat(float64(score.Score), 'f', -1, 32) + "\n"); err != nil {
			return errors.Trace(err)
		}
	}
	return errors.Trace(writer.Flush())
}
