// Command triedict is a thin CLI adapter over the triedict package: it
// builds a dictionary from a newline-delimited "pattern<TAB>value" file,
// optionally serializes it to disk, and matches stdin text against it.
// None of this is part of the core triedict package; it exists so the
// repository is runnable end to end.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/csengstock/triedict"
)

func main() {
	var (
		patternsPath = flag.String("patterns", "", "path to a pattern<TAB>value file")
		loadPath     = flag.String("load", "", "path to a previously serialized dictionary")
		savePath     = flag.String("save", "", "path to write the serialized dictionary")
		boundary     = flag.String("boundary", "", "boundary symbols (e.g. \" .,;!?'\\\"()[]$=\")")
		checksum     = flag.Bool("checksum", false, "append a BLAKE2b checksum trailer on save")
		verbose      = flag.Bool("verbose", false, "debug-level logging")
	)
	flag.Parse()

	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	dict, err := loadOrBuild(*loadPath, *patternsPath, *checksum)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load dictionary")
	}
	log.Info().Int("patterns", dict.Len()).Msg("dictionary ready")

	if *savePath != "" {
		if err := save(dict, *savePath, *checksum); err != nil {
			log.Fatal().Err(err).Msg("failed to save dictionary")
		}
		log.Info().Str("path", *savePath).Msg("dictionary saved")
	}

	var boundarySet *triedict.BoundarySet
	if *boundary != "" {
		boundarySet = triedict.NewBoundarySet(triedict.FromString(*boundary)...)
	}

	runMatches(dict, boundarySet)
}

func loadOrBuild(loadPath, patternsPath string, checksum bool) (*triedict.Dict, error) {
	if loadPath != "" {
		f, err := os.Open(loadPath)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return triedict.Deserialize(f)
	}

	dict := triedict.New(triedict.WithChecksum(checksum))
	if patternsPath == "" {
		return dict, nil
	}

	f, err := os.Open(patternsPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	start := time.Now()
	n := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if line == "" {
			continue
		}
		pattern, value, err := parseLine(line)
		if err != nil {
			log.Warn().Err(err).Str("line", line).Msg("skipping malformed line")
			continue
		}
		if err := dict.Assign(pattern, value); err != nil {
			log.Warn().Err(err).Str("line", line).Msg("skipping rejected pattern")
			continue
		}
		n++
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	log.Debug().Int("patterns_loaded", n).Dur("build_duration_ms", time.Since(start)).Msg("patterns loaded")
	return dict, nil
}

func parseLine(line string) ([]triedict.Symbol, uint32, error) {
	idx := strings.LastIndexByte(line, '\t')
	if idx < 0 {
		return nil, 0, fmt.Errorf("missing tab separator")
	}
	value, err := strconv.ParseUint(line[idx+1:], 10, 32)
	if err != nil {
		return nil, 0, fmt.Errorf("bad value: %w", err)
	}
	return triedict.FromString(line[:idx]), uint32(value), nil
}

func save(dict *triedict.Dict, path string, checksum bool) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	dict.Prepare()
	return dict.Serialize(f, triedict.WithSerializeChecksum(checksum))
}

func runMatches(dict *triedict.Dict, boundary *triedict.BoundarySet) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		text := triedict.FromString(scanner.Text())
		it := dict.MatchBoundary(text, boundary)
		for {
			hit, ok := it.Next()
			if !ok {
				break
			}
			fmt.Printf("%d\t%s\t%d\n", hit.EndIndex, triedict.ToString(hit.Pattern), hit.Value)
		}
	}
}
