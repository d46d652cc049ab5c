// Command trajsample builds the endeffector motion described by a problem file
// and prints its layout, its samples, or its parameter Jacobian.
package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/xlrobotics/towr/config"
	"github.com/xlrobotics/towr/math2d"
	"github.com/xlrobotics/towr/motion"
	"github.com/xlrobotics/towr/spline"
)

var (
	configPath string
	debug      bool
	params     []float64

	jacTime  float64
	jacEE    int
	jacAxis  string
	jacDeriv string
)

var log = logrus.WithFields(logrus.Fields{
	"pkg": "main",
})

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "trajsample",
	Short: "Inspect endeffector trajectories built from a contact schedule",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if debug {
			logrus.SetLevel(logrus.DebugLevel)
		}
	},
	SilenceUsage: true,
}

var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Print the phases and parameter blocks of every endeffector",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, _, err := build()
		if err != nil {
			return err
		}
		printLayout(cmd.OutOrStdout(), m)
		return nil
	},
}

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Print position, velocity and acceleration of every endeffector at each dt",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, cfg, err := build()
		if err != nil {
			return err
		}
		printSamples(cmd.OutOrStdout(), m, cfg.Dt)
		return nil
	},
}

var jacobianCmd = &cobra.Command{
	Use:   "jacobian",
	Short: "Print the derivative of one coordinate with respect to every parameter",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, _, err := build()
		if err != nil {
			return err
		}

		axis, err := parseAxis(jacAxis)
		if err != nil {
			return err
		}

		deriv, err := parseDeriv(jacDeriv)
		if err != nil {
			return err
		}

		row, err := m.GetJacobianWrtOptParamsAt(deriv, jacTime, motion.EndeffectorID(jacEE), axis)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), row)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "problem.yaml", "path to the problem file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "log the parameter layout")
	rootCmd.PersistentFlags().Float64SliceVar(&params, "param", nil, "optimization parameters to apply (default: leave every contact at its start)")

	jacobianCmd.Flags().Float64Var(&jacTime, "t", 0, "global time")
	jacobianCmd.Flags().IntVar(&jacEE, "ee", 0, "endeffector id")
	jacobianCmd.Flags().StringVar(&jacAxis, "axis", "x", "x or y")
	jacobianCmd.Flags().StringVar(&jacDeriv, "deriv", "pos", "pos, vel or acc")

	rootCmd.AddCommand(layoutCmd)
	rootCmd.AddCommand(sampleCmd)
	rootCmd.AddCommand(jacobianCmd)
}

func build() (*motion.EndeffectorsMotion, *config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	initial, cs, err := cfg.Problem()
	if err != nil {
		return nil, nil, err
	}

	m, err := motion.NewEndeffectorsMotion(initial, cs)
	if err != nil {
		return nil, nil, err
	}

	log.Infof("%d endeffectors, %d parameters, %.3fs", m.GetNumberOfEndeffectors(), m.NumParameters(), m.GetTotalTime())

	if len(params) > 0 {
		x := mat.NewVecDense(len(params), append([]float64(nil), params...))
		if err := m.SetOptimizationParameters(x); err != nil {
			return nil, nil, err
		}
	}

	return m, cfg, nil
}

func printLayout(w io.Writer, m *motion.EndeffectorsMotion) {
	for i := 0; i < m.GetNumberOfEndeffectors(); i++ {
		ee := motion.EndeffectorID(i)
		em := m.Endeffector(ee)
		start := m.IndexStart(ee)

		fmt.Fprintf(w, "%v params=[%d, %d)\n", ee, start, start+m.ParameterCount(ee))
		for j, p := range em.Phases() {
			fmt.Fprintf(w, "  %.3f %v\n", em.PhaseStart(j), p)
		}
		for j, c := range em.Contacts() {
			fmt.Fprintf(w, "  contact %d %v\n", j, c)
		}
	}
}

func printSamples(w io.Writer, m *motion.EndeffectorsMotion, dt float64) {
	total := m.GetTotalTime()
	n := int(math.Floor(total/dt + 1e-9))

	times := make([]float64, 0, n+2)
	for i := 0; i <= n; i++ {
		times = append(times, float64(i)*dt)
	}
	if times[len(times)-1] < total {
		times = append(times, total)
	}

	for _, t := range times {
		for i, s := range m.GetEndeffectorsVec(t) {
			fmt.Fprintf(w, "%.4f %v %+.5f %+.5f %+.5f %+.5f %+.5f %+.5f\n", t, motion.EndeffectorID(i),
				s.Pos.X, s.Pos.Y, s.Vel.X, s.Vel.Y, s.Acc.X, s.Acc.Y)
		}
	}
}

func parseAxis(s string) (math2d.Axis, error) {
	switch strings.ToLower(s) {
	case "x":
		return math2d.X, nil
	case "y":
		return math2d.Y, nil
	default:
		return 0, fmt.Errorf("unknown axis: %q", s)
	}
}

func parseDeriv(s string) (spline.PosVelAcc, error) {
	for _, d := range []spline.PosVelAcc{spline.Position, spline.Velocity, spline.Acceleration} {
		if d.String() == s {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown derivative: %q", s)
}
