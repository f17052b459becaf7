package scenario_test

import (
	"os"
	"path/filepath"

	"github.com/db47h/hwbench"
	"github.com/db47h/hwbench/scenario"
	"github.com/google/go-cmp/cmp"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"
	"github.com/sarchlab/akita/v4/sim"
)

var _ = Describe("Config", func() {
	It("should default to the bench constants", func() {
		cfg := scenario.DefaultConfig()
		Expect(cfg.Seed).To(Equal(int64(666)))
		Expect(cfg.Iterations).To(Equal(32))
		Expect(cfg.Validate()).To(Succeed())
		Expect(cfg.Period()).To(Equal(2 * hwbench.Nanosecond))
	})

	Describe("LoadConfig", func() {
		var dir string

		BeforeEach(func() {
			var err error
			dir, err = os.MkdirTemp("", "hwbench-config-*")
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			_ = os.RemoveAll(dir)
		})

		write := func(content string) string {
			p := filepath.Join(dir, "hwbench.yaml")
			Expect(os.WriteFile(p, []byte(content), 0644)).To(Succeed())
			return p
		}

		It("should override defaults with file values", func() {
			cfg, err := scenario.LoadConfig(write(`
seed: 42
clock_hz: 1000000000
pc_width: 16
max_deltas: 64
scripts:
  - name: smoke
    circuit: dff
    file: smoke.lua
`))
			Expect(err).NotTo(HaveOccurred())

			want := scenario.DefaultConfig()
			want.Seed = 42
			want.Clock = 1 * sim.GHz
			want.PCWidth = 16
			want.MaxDeltas = 64
			want.Scripts = []scenario.Script{{Name: "smoke", Circuit: "dff", File: "smoke.lua"}}
			Expect(cmp.Diff(want, cfg)).To(BeEmpty())
			Expect(cfg.Period()).To(Equal(hwbench.Nanosecond))
		})

		It("should reject invalid values", func() {
			for _, src := range []string{
				"register_width: 65",
				"mux_channels: 1",
				"mux_channels: 9\nmux_width: 3",
				"clock_hz: 0",
				"clock_hz: 500000000000",
				"timeout: 0",
				"max_deltas: -1",
				"scripts: [{name: x}]",
				"seed: [",
			} {
				_, err := scenario.LoadConfig(write(src))
				Expect(errors.Cause(err)).To(Equal(hwbench.ErrConfig), src)
			}
		})

		It("should fail on a missing file", func() {
			_, err := scenario.LoadConfig(filepath.Join(dir, "nope.yaml"))
			Expect(err).To(HaveOccurred())
		})
	})
})
