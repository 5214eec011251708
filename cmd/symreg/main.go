/*
symreg is a symbolic-regression genetic-programming engine: it fits a
closed-form expression tree to a tabular dataset, optimizing either a
single fitness metric with a steady-state GP driver or several
objectives at once with an NSGA-II driver.

usage: symreg [flags]... <dataset.csv>

positional arguments:

	<dataset.csv>	a CSV file with a header row; every column but the
			last is a variable, the last column is the target

flags:

	-o string
	  	output prefix for the log file and plots
	-g int
	  	number of generations (default 50)
	-p int
	  	population size (default 100)
	-objectives int
	  	number of objectives: 1 (GP) or 2 (NSGA-II, fit + length) (default 1)
	-n int
	  	number of parallel processes (default 0, meaning 1)
	-seed int
	  	random seed (default 1)

examples:

	symreg -o run -g 100 -p 200 data.csv
*/
package main

import (
	"bytes"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jsdoublel/symreg/internal/algo"
	"github.com/jsdoublel/symreg/internal/cache"
	"github.com/jsdoublel/symreg/internal/creator"
	"github.com/jsdoublel/symreg/internal/dataset"
	"github.com/jsdoublel/symreg/internal/dispatch"
	"github.com/jsdoublel/symreg/internal/eval"
	"github.com/jsdoublel/symreg/internal/expr"
	"github.com/jsdoublel/symreg/internal/interp"
	"github.com/jsdoublel/symreg/internal/nlopt"
	"github.com/jsdoublel/symreg/internal/offspring"
	"github.com/jsdoublel/symreg/internal/population"
	"github.com/jsdoublel/symreg/internal/report"
	"github.com/jsdoublel/symreg/internal/selection"
	"github.com/jsdoublel/symreg/internal/sorter"
	"github.com/jsdoublel/symreg/internal/symbol"
	"github.com/jsdoublel/symreg/internal/variation"
)

const (
	ErrorMessage = "symreg encountered an error ::"
	TimeFormat   = "2006-01-02_15-04-05"
)

var defaultPrimitives = []symbol.Type{
	symbol.Add, symbol.Sub, symbol.Mul, symbol.Div,
	symbol.Sin, symbol.Cos, symbol.Exp, symbol.Log,
}

type Args struct {
	prefix      string
	dataFile    string
	generations int
	popSize     int
	objectives  int
	nprocs      int
	seed        int64
}

func Usage() {
	fmt.Fprint(flag.CommandLine.Output(), // nolint
		"usage: symreg [flags]... <dataset.csv>\n",
		"\n",
		"positional arguments:\n\n",
		"  <dataset.csv>\t\tCSV file with a header row; last column is the target\n",
		"\n",
		"flags:\n\n",
	)
	flag.PrintDefaults()
	fmt.Fprint(flag.CommandLine.Output(), // nolint
		"\n",
		"examples:\n\n",
		"\tsymreg -o run -g 100 -p 200 data.csv\n\n",
	)
}

func parseArgs() Args {
	flag.Usage = Usage
	prefix := flag.String("o", "", "output prefix for the log file and plots")
	gens := flag.Int("g", 50, "number of generations")
	pop := flag.Int("p", 100, "population size")
	objectives := flag.Int("objectives", 1, "number of objectives: 1 (GP) or 2 (NSGA-II, fit + length)")
	nprocs := flag.Int("n", 0, "number of parallel processes")
	seed := flag.Int64("seed", 1, "random seed")
	flag.Parse()
	if flag.NArg() != 1 {
		parserError("one positional argument required: <dataset.csv>")
	}
	if *objectives != 1 && *objectives != 2 {
		parserError("-objectives must be 1 or 2")
	}
	return Args{
		prefix:      *prefix,
		dataFile:    flag.Arg(0),
		generations: *gens,
		popSize:     *pop,
		objectives:  *objectives,
		nprocs:      *nprocs,
		seed:        *seed,
	}
}

func parserError(message string) {
	fmt.Fprintln(os.Stderr, message+"\n")
	Usage()
	os.Exit(1)
}

func defaultPrefix(dataFile string) string {
	parts := strings.Split(dataFile, string(os.PathSeparator))
	name := strings.TrimSuffix(parts[len(parts)-1], ".csv")
	return fmt.Sprintf("symreg_%s_%s", name, time.Now().Local().Format(TimeFormat))
}

func main() {
	var exit int
	defer func() {
		os.Exit(exit)
	}()
	buf := &bytes.Buffer{} // capture pre logfile setup logging
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	log.SetOutput(io.MultiWriter(os.Stderr, buf))
	args := parseArgs()
	if args.prefix == "" {
		args.prefix = defaultPrefix(args.dataFile)
		log.Printf("output prefix was not set, using %q", args.prefix)
	}
	if logf, err := os.Create(fmt.Sprintf("%s.log", args.prefix)); err == nil {
		logf.Write(buf.Bytes()) // nolint
		log.SetOutput(io.MultiWriter(os.Stderr, logf))
		defer func() {
			log.SetOutput(os.Stderr)
			_ = logf.Close()
		}()
	} else {
		log.Printf("failed to create log file %s.log, %s", args.prefix, err)
	}
	log.Printf("invoked as: symreg %s", strings.Join(os.Args[1:], " "))
	if err := run(args); err != nil {
		log.Printf("%s %s", ErrorMessage, err)
		exit = 1
	}
}

func run(args Args) error {
	names, columns, target, err := readCSV(args.dataFile)
	if err != nil {
		return err
	}
	ds, err := dataset.NewMatrix(names, columns)
	if err != nil {
		return err
	}
	rng := dataset.Range{Start: 0, End: ds.Rows()}

	vars := make([]symbol.VariableInfo, len(names))
	for i, v := range ds.Variables() {
		vars[i] = symbol.VariableInfo{Name: v.Name, Hash: v.Hash}
	}
	primitives := make([]symbol.Primitive, len(defaultPrimitives))
	for i, t := range defaultPrimitives {
		min, max := symbol.MinArity(t), symbol.MaxArity(t)
		if max > 2 {
			max = 2 // cap variadic add/mul at binary for this demo
		}
		primitives[i] = symbol.Primitive{Type: t, Enabled: true, Frequency: 1, MinArity: min, MaxArity: max}
	}
	primSet, err := symbol.New(primitives, vars)
	if err != nil {
		return err
	}

	table, err := dispatch.NewTable(defaultPrimitives)
	if err != nil {
		return err
	}
	ip := interp.New(table)

	creatorCfg := creator.Config{Primitives: primSet, VariableProb: 0.8, ConstantStd: 1}
	createTree := func(r *rand.Rand) (*expr.Tree, error) {
		return creator.Grow(r, creatorCfg, 20, 1, 6)
	}

	fitEval := &eval.LeastSquares{Interp: ip, Data: ds, Target: target, LinearScale: true}
	var evaluator eval.Evaluator = fitEval
	if args.objectives == 2 {
		evaluator = &eval.MultiEvaluator{Evaluators: []eval.Evaluator{
			fitEval,
			&eval.LengthEvaluator{MaxLength: 40},
		}}
	}

	mutCfg := variation.MutationConfig{Primitives: primSet, Creator: creatorCfg, MaxLength: 40, MaxDepth: 10}
	zobrist := cache.NewZobristTable(rand.New(rand.NewSource(args.seed)), 40)
	transCache := cache.NewTransposition(0)
	optOpts := nlopt.Options{Method: nlopt.LM, Iterations: 20}

	var stats []report.GenerationStat
	problem := algo.Problem{
		Objectives: args.objectives,
		CreateTree: createTree,
		Evaluator:  evaluator,
		Budget:     eval.NewBudget(0),
		Range:      rng,
		NewGenerator: func(pop []population.Individual) offspring.Generator {
			cmp := selection.ByObjective(firstObjective(pop))
			return offspring.Basic{Config: offspring.Config{
				Female:                 selection.NewTournament(len(pop), 3, cmp),
				Male:                   selection.NewTournament(len(pop), 3, cmp),
				Crossover:              variation.CrossoverConfig{InternalProbability: 0.9, MaxLength: 40, MaxDepth: 10},
				Mutation:               variation.MultiMutation{Config: mutCfg},
				CrossoverProbability:   0.9,
				MutationProbability:    0.25,
				LocalSearchProbability: 0.5,
				LamarckianProbability:  0.2,
				LocalSearchIterations:  optOpts.Iterations,
				Evaluator:              evaluator,
				Range:                  rng,
				Interp:                 ip,
				Data:                   ds,
				Target:                 target,
				OptimizeOpts:           optOpts,
				Cache:                  transCache,
				Zobrist:                zobrist,
			}}
		},
		Report: func(r algo.Report) {
			med := medianFirstObjective(r.Population)
			log.Printf("generation %d: best=%v median=%v", r.Generation, r.Best.Fitness, med)
			stats = append(stats, report.GenerationStat{Generation: r.Generation, Best: r.Best.Fitness[0], Median: med})
		},
	}

	cfg := algo.Config{
		Generations:            args.generations,
		PopulationSize:         args.popSize,
		PoolSize:               args.popSize,
		CrossoverProbability:   0.9,
		MutationProbability:    0.25,
		LocalSearchProbability: 0.5,
		LamarckianProbability:  0.2,
		Iterations:             optOpts.Iterations,
		Seed:                   args.seed,
		Epsilon:                1e-9,
		NProcs:                 args.nprocs,
	}
	var best population.Individual
	if args.objectives == 1 {
		result, err := algo.RunGP(problem, cfg)
		if err != nil {
			return err
		}
		best = result.BestFront[0]
	} else {
		result, err := algo.RunNSGA2(problem, cfg, sorter.Hierarchical{})
		if err != nil {
			return err
		}
		fitness := make([][]float64, len(result.Population))
		for i, ind := range result.Population {
			fitness[i] = ind.Fitness
		}
		if err := report.WriteParetoPlot(fitness, fmt.Sprintf("%s_pareto.png", args.prefix)); err != nil {
			log.Printf("failed to write pareto plot: %s", err)
		}
		best = result.BestFront[0]
		for _, ind := range result.BestFront {
			if ind.Fitness[0] < best.Fitness[0] {
				best = ind
			}
		}
	}

	if len(stats) > 0 {
		if err := report.WriteConvergencePlot(stats, fmt.Sprintf("%s_convergence.png", args.prefix)); err != nil {
			log.Printf("failed to write convergence plot: %s", err)
		}
	}

	fmt.Printf("best fitness: %v\n", best.Fitness)
	fmt.Printf("best expression: %s\n", formatTree(best.Genotype))
	return nil
}

func firstObjective(pop []population.Individual) []float64 {
	out := make([]float64, len(pop))
	for i, ind := range pop {
		out[i] = ind.Fitness[0]
	}
	return out
}

func medianFirstObjective(pop []population.Individual) float64 {
	if len(pop) == 0 {
		return 0
	}
	vals := firstObjective(pop)
	sorted := append([]float64(nil), vals...)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j-1] > sorted[j]; j-- {
			sorted[j-1], sorted[j] = sorted[j], sorted[j-1]
		}
	}
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// readCSV reads a header row followed by numeric rows; every column but
// the last becomes a variable, the last becomes the regression target.
func readCSV(path string) (names []string, columns [][]float64, target []float64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, nil, err
	}
	defer f.Close() // nolint

	reader := csv.NewReader(f)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, nil, err
	}
	if len(rows) < 2 {
		return nil, nil, nil, fmt.Errorf("symreg: dataset must have a header and at least one data row")
	}
	header := rows[0]
	nVars := len(header) - 1
	names = header[:nVars]
	columns = make([][]float64, nVars)
	for i := range columns {
		columns[i] = make([]float64, 0, len(rows)-1)
	}
	target = make([]float64, 0, len(rows)-1)
	for _, row := range rows[1:] {
		for i := 0; i < nVars; i++ {
			v, err := strconv.ParseFloat(row[i], 64)
			if err != nil {
				return nil, nil, nil, fmt.Errorf("symreg: parsing column %q: %w", names[i], err)
			}
			columns[i] = append(columns[i], v)
		}
		y, err := strconv.ParseFloat(row[nVars], 64)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("symreg: parsing target: %w", err)
		}
		target = append(target, y)
	}
	return names, columns, target, nil
}

// formatTree renders a postfix tree as a function-call expression
// string such as add(a, b).
func formatTree(t *expr.Tree) string {
	var render func(i int) string
	render = func(i int) string {
		n := t.Node(i)
		switch {
		case n.IsConstant():
			return strconv.FormatFloat(n.Value, 'g', 6, 64)
		case n.IsVariable():
			return fmt.Sprintf("(%g*v%d)", n.Value, n.HashValue)
		default:
			children := t.Indices(i)
			parts := make([]string, len(children))
			for k := len(children) - 1; k >= 0; k-- {
				parts[len(children)-1-k] = render(children[k])
			}
			return fmt.Sprintf("%s(%s)", n.Type, strings.Join(parts, ", "))
		}
	}
	return render(t.Root())
}
