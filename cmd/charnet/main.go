package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/unixpickle/anynet"
	"github.com/unixpickle/anynet/anysgd"
	"github.com/unixpickle/anyvec/anyvec32"
	"github.com/unixpickle/charnet"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/rip"
)

func main() {
	if len(os.Args) < 2 {
		essentials.Die("Usage: charnet <train | sample> [flags]")
	}
	switch os.Args[1] {
	case "train":
		train(os.Args[2:])
	case "sample":
		sample(os.Args[2:])
	default:
		essentials.Die("unknown sub-command:", os.Args[1])
	}
}

func train(args []string) {
	fs := flag.NewFlagSet("train", flag.ExitOnError)
	inFile := fs.String("in", "", "input text corpus")
	outDir := fs.String("out", ".", "checkpoint output directory")
	resume := fs.String("resume", "", "checkpoint to resume from")
	batchSize := fs.Int("batch", 100, "sequences per batch")
	numSteps := fs.Int("steps", 100, "timesteps per window")
	lstmSize := fs.Int("size", 512, "LSTM state size")
	numLayers := fs.Int("layers", 2, "number of LSTM layers")
	rate := fs.Float64("rate", 0.001, "learning rate")
	keep := fs.Float64("keep", 0.5, "dropout keep probability")
	clip := fs.Float64("clip", 5, "gradient clip norm")
	frac := fs.Float64("frac", 0.9, "training fraction of the corpus")
	saveEvery := fs.Int("save", 200, "iterations between checkpoints")
	fs.Parse(args)
	if *inFile == "" {
		essentials.Die("Required flag: -in. See -help for more.")
	}

	text, err := os.ReadFile(*inFile)
	if err != nil {
		essentials.Die(err)
	}

	var model *charnet.Model
	if *resume != "" {
		log.Println("Resuming from", *resume, "...")
		model, err = charnet.LoadCheckpoint(*resume)
		if err != nil {
			essentials.Die(err)
		}
	} else {
		log.Println("Creating a new model...")
		vocab := charnet.NewVocab(string(text))
		model = charnet.NewModel(anyvec32.CurrentCreator(), vocab, *lstmSize,
			*numLayers, *keep)
	}

	corpus, err := model.Vocab.Encode(string(text))
	if err != nil {
		essentials.Die(err)
	}
	batches, err := charnet.Split(corpus, *batchSize, *numSteps, *frac)
	if err != nil {
		essentials.Die(err)
	}

	trainer := &charnet.Trainer{
		Model: model,
		Cost:  anynet.DotCost{},
		Transformer: charnet.Pipeline{
			&charnet.Clipper{Norm: *clip},
			&anysgd.Adam{},
		},
		Rater:     anysgd.ConstRater(*rate),
		SaveEvery: *saveEvery,
		StatusFunc: func(epoch, iter int, cost float64, elapsed time.Duration) {
			log.Printf("epoch %d iter %d: loss=%.4f (%.3fs)", epoch, iter, cost,
				elapsed.Seconds())
		},
		CheckpointFunc: func(iter int, valCost float64) error {
			name := charnet.CheckpointName(iter, model.LSTMSize(), valCost)
			log.Printf("iter %d: validation loss=%.4f, saving %s", iter, valCost, name)
			return charnet.SaveCheckpoint(*outDir, name, model)
		},
	}

	log.Println("Press ctrl+c once to stop...")
	if err := trainer.Train(batches, rip.NewRIP().Chan()); err != nil {
		essentials.Die(err)
	}
}

func sample(args []string) {
	fs := flag.NewFlagSet("sample", flag.ExitOnError)
	modelPath := fs.String("model", "", "checkpoint file")
	prime := fs.String("prime", "The ", "priming string")
	count := fs.Int("n", 1000, "number of characters to generate")
	topN := fs.Int("top", charnet.DefaultTopN, "top-N sampling width")
	seed := fs.Int64("seed", 0, "random seed (0 means time-based)")
	fs.Parse(args)
	if *modelPath == "" {
		essentials.Die("Required flag: -model. See -help for more.")
	}

	model, err := charnet.LoadCheckpoint(*modelPath)
	if err != nil {
		essentials.Die(err)
	}
	model.SetDropout(false)

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	sampler := &charnet.Sampler{
		Predictor: model,
		Vocab:     model.Vocab,
		TopN:      *topN,
		Rand:      rand.New(rand.NewSource(*seed)),
	}
	text, err := sampler.Sample(*prime, *count)
	if err != nil {
		essentials.Die(err)
	}
	fmt.Println(text)
}
