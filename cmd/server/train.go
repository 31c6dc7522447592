package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/actuallystonmai/course-recommender/internal/collaborative"
	"github.com/actuallystonmai/course-recommender/internal/logging"
	"github.com/actuallystonmai/course-recommender/internal/repository"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Fit the SVD and KNN models on the interaction log and write their artifacts",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		log := logging.Component("train")
		flags := cmd.Flags()
		testFraction, _ := flags.GetFloat64("test-fraction")

		svdParams := collaborative.DefaultSVDParams()
		svdParams.Factors, _ = flags.GetInt("factors")
		svdParams.Epochs, _ = flags.GetInt("epochs")
		knnParams := collaborative.DefaultKNNParams()
		knnParams.K, _ = flags.GetInt("k")

		pool, err := connectPostgres(ctx, cfg)
		if err != nil {
			return err
		}
		defer pool.Close()

		interactions, err := repository.New(pool).ListInteractions(ctx)
		if err != nil {
			return err
		}
		ratings := collaborative.RatingsFromInteractions(interactions)
		if len(ratings) == 0 {
			return fmt.Errorf("no ratings to train on")
		}
		train, test := collaborative.Split(ratings, testFraction, svdParams.Seed)
		log.Info().Int("train", len(train)).Int("test", len(test)).Msg("ratings loaded")

		svd, err := collaborative.TrainSVD(ctx, train, svdParams)
		if err != nil {
			return fmt.Errorf("train svd: %w", err)
		}
		m := collaborative.Evaluate(svd, test)
		log.Info().Float64("rmse", m.RMSE).Float64("mae", m.MAE).Int("evaluated", m.Evaluated).
			Int("skipped", m.Skipped).Msg("svd evaluated")

		knn, err := collaborative.TrainKNN(ctx, train, knnParams)
		if err != nil {
			return fmt.Errorf("train knn: %w", err)
		}
		m = collaborative.Evaluate(knn, test)
		log.Info().Float64("rmse", m.RMSE).Float64("mae", m.MAE).Int("evaluated", m.Evaluated).
			Int("skipped", m.Skipped).Msg("knn evaluated")

		// serving models are refit on every rating
		if len(test) > 0 {
			if svd, err = collaborative.TrainSVD(ctx, ratings, svdParams); err != nil {
				return fmt.Errorf("refit svd: %w", err)
			}
			if knn, err = collaborative.TrainKNN(ctx, ratings, knnParams); err != nil {
				return fmt.Errorf("refit knn: %w", err)
			}
		}

		if err := collaborative.SaveSVD(cfg.SVDModelPath, svd); err != nil {
			return err
		}
		if err := collaborative.SaveKNN(cfg.KNNModelPath, knn); err != nil {
			return err
		}
		log.Info().Str("svd", cfg.SVDModelPath).Str("knn", cfg.KNNModelPath).Msg("model artifacts written")
		return nil
	},
}

func init() {
	d := collaborative.DefaultSVDParams()
	trainCmd.Flags().Int("factors", d.Factors, "SVD latent factors")
	trainCmd.Flags().Int("epochs", d.Epochs, "SVD training epochs")
	trainCmd.Flags().Int("k", collaborative.DefaultKNNParams().K, "KNN neighbors used per prediction")
	trainCmd.Flags().Float64("test-fraction", 0.2, "share of ratings held out for evaluation")
	rootCmd.AddCommand(trainCmd)
}
