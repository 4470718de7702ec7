package main

import (
	"context"
	"flag"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"

	"gorgonia.org/tensor"

	"ganforge/internal/checkpoint"
	"ganforge/internal/config"
	"ganforge/internal/dataset"
	"ganforge/internal/engine"
	"ganforge/internal/gan"
	"ganforge/internal/trainer"
)

func main() {
	cfgPath := flag.String("config", "", "Path to YAML config")
	dataPath := flag.String("data", "", "IDX image file to train on (synthetic data when empty)")
	labelsPath := flag.String("labels", "", "IDX label file paired with -data")
	steps := flag.Int("steps", 0, "Number of training steps")
	batchSize := flag.Int("batch-size", 0, "Batch size")
	seed := flag.Int64("seed", 0, "PRNG seed")
	logEvery := flag.Int("log-every", 0, "Summary log every N steps")
	checkpointEvery := flag.Int("checkpoint-every", 0, "Checkpoint every N steps")
	checkpointPath := flag.String("checkpoint", "", "Checkpoint artifact path")

	flag.Parse()

	cfg := config.Default()
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		cfg = loaded
	}

	cfg.ApplyOverrides(config.Overrides{
		DataPath:        *dataPath,
		LabelsPath:      *labelsPath,
		Steps:           *steps,
		BatchSize:       *batchSize,
		Seed:            *seed,
		LogEvery:        *logEvery,
		CheckpointEvery: *checkpointEvery,
		CheckpointPath:  *checkpointPath,
	})

	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	spec := gan.DefaultNetworkSpec(28, 28, 1)
	train, err := loadTraining(cfg, spec)
	if err != nil {
		log.Fatalf("failed to load training data: %v", err)
	}
	log.Printf("examples=%d image_shape=%v", train.Features.Shape()[0], spec.ImageShape())

	session, err := gan.NewSession(spec)
	if err != nil {
		log.Fatalf("invalid network spec: %v", err)
	}
	if _, err := session.BuildDiscriminator(); err != nil {
		log.Fatalf("build discriminator: %v", err)
	}
	if _, err := session.BuildGenerator(); err != nil {
		log.Fatalf("build generator: %v", err)
	}
	compiledDis, err := session.CompileDiscriminator()
	if err != nil {
		log.Fatalf("compile discriminator: %v", err)
	}
	compiledAdv, err := session.CompileAdversarial()
	if err != nil {
		log.Fatalf("compile adversarial: %v", err)
	}

	eng := engine.New(spec, cfg.Seed)
	disModel, err := eng.BindDiscriminator(compiledDis)
	if err != nil {
		log.Fatalf("bind discriminator: %v", err)
	}
	advModel, err := eng.BindAdversarial(compiledAdv)
	if err != nil {
		log.Fatalf("bind adversarial: %v", err)
	}
	generator, err := eng.BindGenerator(session.Generator())
	if err != nil {
		log.Fatalf("bind generator: %v", err)
	}

	loop := &trainer.Loop{
		Session:       session,
		Discriminator: disModel,
		Adversarial:   advModel,
		Generator:     generator,
		Sampler:       dataset.NewSampler(spec.LatentDims, cfg.Seed),
		Logger:        trainer.NewLogSink(cfg.LogEvery, cfg.BatchSize),
		Checkpoint: func(step int) error {
			snap, err := checkpoint.Capture(eng.ParamNames(), eng.Params())
			if err != nil {
				return err
			}
			if err := checkpoint.Save(cfg.CheckpointPath, snap); err != nil {
				return err
			}
			log.Printf("checkpoint step=%d path=%s", step, cfg.CheckpointPath)
			return nil
		},
		Steps:           cfg.Steps,
		BatchSize:       cfg.BatchSize,
		CheckpointEvery: cfg.CheckpointEvery,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := loop.Run(ctx, train, dataset.Split{}, dataset.Split{}); err != nil {
		log.Fatalf("training failed: %v", err)
	}
}

func loadTraining(cfg *config.Config, spec gan.NetworkSpec) (dataset.Split, error) {
	if cfg.DataPath == "" {
		return syntheticTraining(spec, cfg.Seed), nil
	}
	images, err := dataset.LoadIDXImages(cfg.DataPath)
	if err != nil {
		return dataset.Split{}, err
	}
	split := dataset.Split{Features: images}
	if cfg.LabelsPath != "" {
		labels, err := dataset.LoadIDXLabels(cfg.LabelsPath)
		if err != nil {
			return dataset.Split{}, err
		}
		split.Labels = labels
	}
	return split, nil
}

// syntheticTraining builds a small random grayscale set so the demo runs
// without any dataset on disk.
func syntheticTraining(spec gan.NetworkSpec, seed int64) dataset.Split {
	const examples = 256
	rng := rand.New(rand.NewSource(seed))
	size := spec.Channels * spec.Rows * spec.Cols
	backing := make([]float64, examples*size)
	for i := range backing {
		backing[i] = rng.Float64()
	}
	labels := make([]float64, examples)
	for i := range labels {
		labels[i] = float64(rng.Intn(10))
	}
	return dataset.Split{
		Features: tensor.New(
			tensor.WithShape(examples, spec.Channels, spec.Rows, spec.Cols),
			tensor.WithBacking(backing),
		),
		Labels: tensor.New(tensor.WithShape(examples, 1), tensor.WithBacking(labels)),
	}
}
