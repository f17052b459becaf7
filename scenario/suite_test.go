package scenario_test

import (
	"bytes"
	"context"
	"regexp"
	"runtime"

	"github.com/db47h/hwbench"
	"github.com/db47h/hwbench/hwlib"
	"github.com/db47h/hwbench/hwtest"
	"github.com/db47h/hwbench/scenario"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"
)

// stuckMux is a mux that always drives channels[0].
func stuckMux(count, width int) *hwbench.PartSpec {
	sp := hwlib.MuxSpec(count, width)
	sp.Mount = func(s *hwbench.Socket) []hwbench.Component {
		ch, out := s.Bus("channels", count), s.Pin("channel_out")
		return []hwbench.Component{func(c *hwbench.Circuit) { c.Set(out, c.Get(ch[0])) }}
	}
	return sp
}

// stuckFetch is a fetch stage whose source mux always selects PC + 4.
func stuckFetch(cfg *scenario.Config) (*hwbench.PartSpec, error) {
	w := cfg.PCWidth
	fn, err := hwlib.FetchStage(w)
	if err != nil {
		return nil, err
	}
	ref := fn("").PartSpec
	sp, err := hwbench.ChipSpec("STUCK_FETCH", ref.Inputs, ref.Outputs,
		stuckMux(4, w).NewPart("channels[0]=pc_plus_4_f, channels[1]=pc_plus_4_e, channels[2]=alu_result_e, channels[3]=0, "+
			"select=pc_source_e, channel_out=pc_src"),
		hwlib.MuxN(2, w)("channels[0]=pc_src, channels[1]=predicted_pc_d, select=prediction_source_d, channel_out=pc_next"),
		hwlib.Register(hwlib.DFFAsyncRstNEn, w)("data=pc_next, async_rst_n=async_rst_n, enabler=enable_fetch_h, q=pc_f"),
		hwlib.AddConst(w, 4)("a=pc_f, out=pc_plus_4_f"),
	)
	if err != nil {
		return nil, err
	}
	sp.Params = ref.Params
	return sp, nil
}

func testConfig() scenario.Config {
	cfg := scenario.DefaultConfig()
	cfg.Iterations = 8
	cfg.ProveDepth = 3
	cfg.PCWidth = 8
	cfg.Parallel = runtime.GOMAXPROCS(0)
	return cfg
}

var _ = Describe("Suite", func() {
	var (
		ctx context.Context
		cfg scenario.Config
	)

	BeforeEach(func() {
		ctx = context.Background()
		cfg = testConfig()
	})

	Describe("NewDefaultSuite", func() {
		It("should pass all built-in scenarios", func() {
			s, err := scenario.NewDefaultSuite(cfg)
			Expect(err).NotTo(HaveOccurred())
			rep := s.RunAll(ctx, nil)
			for _, r := range rep.Results {
				Expect(r.Err).NotTo(HaveOccurred(), r.Name)
			}
			Expect(rep.Failed()).To(BeZero())
			Expect(rep.Results).To(HaveLen(len(s.Scenarios(nil))))
			Expect(rep.RunID.IsNil()).To(BeFalse())
		})

		It("should cover every register kind, the mux and the fetch stage", func() {
			s, err := scenario.NewDefaultSuite(cfg)
			Expect(err).NotTo(HaveOccurred())
			names := s.Scenarios(nil)
			for _, k := range hwlib.RegKinds() {
				Expect(names).To(ContainElement(k.String() + "/store_random"))
				Expect(names).To(ContainElement("formal/" + k.String()))
			}
			Expect(names).To(ContainElement("dff_async_rst_n_en/enabled_but_reseting"))
			Expect(names).To(ContainElement("dff_sync_rst_n/store_while_rst"))
			Expect(names).To(ContainElement("dff_async_rst_n/store_while_rst"))
			Expect(names).To(ContainElement("dff_async_rst_n_en/store_while_rst"))
			Expect(names).To(ContainElement("mux/select_channel"))
			Expect(names).To(ContainElement("fetch_stage/reset_beats_prediction"))
			Expect(names).NotTo(ContainElement("dff/retain_value"))
		})

		It("should run filtered scenarios with a different configuration", func() {
			cfg.RegisterWidth = 64
			cfg.MuxChannels, cfg.MuxWidth = 5, 3
			cfg.PCWidth = 32
			cfg.Workers = 4
			s, err := scenario.NewDefaultSuite(cfg)
			Expect(err).NotTo(HaveOccurred())
			rep := s.RunAll(ctx, regexp.MustCompile(`^(dff_sync_rst_n_en|mux|fetch_stage)/`))
			Expect(rep.Results).NotTo(BeEmpty())
			for _, r := range rep.Results {
				Expect(r.Err).NotTo(HaveOccurred(), r.Name)
				Expect(r.Time).To(BeNumerically(">", 0), r.Name)
			}
		})
	})

	Describe("faulty circuits", func() {
		It("should fail the mux and fetch stage scenarios", func() {
			cfg.MuxChannels, cfg.MuxWidth = 5, 3
			s, err := scenario.NewDefaultSuite(cfg,
				scenario.WithCircuit(scenario.CircuitMux, func(c *scenario.Config) (*hwbench.PartSpec, error) {
					return stuckMux(c.MuxChannels, c.MuxWidth), nil
				}),
				scenario.WithCircuit(scenario.CircuitFetch, stuckFetch),
			)
			Expect(err).NotTo(HaveOccurred())
			for _, n := range []string{
				"mux/select_channel",
				"mux/random_channels",
				"formal/mux",
				"fetch_stage/source_selects_alu_result_e",
				"formal/fetch_stage",
			} {
				var ae *hwtest.AssertionError
				Expect(errors.As(s.Run(ctx, n).Err, &ae)).To(BeTrue(), n)
			}
			Expect(s.Run(ctx, "fetch_stage/pc_counting").Err).NotTo(HaveOccurred())
		})
	})

	Describe("Run", func() {
		It("should be reproducible", func() {
			s, err := scenario.NewDefaultSuite(cfg)
			Expect(err).NotTo(HaveOccurred())
			r1 := s.Run(ctx, "fetch_stage/random_model")
			r2 := s.Run(ctx, "fetch_stage/random_model")
			Expect(r1.Err).NotTo(HaveOccurred())
			Expect(r1.Edges).To(Equal(r2.Edges))
			Expect(r1.Time).To(Equal(r2.Time))
		})

		It("should report unknown scenarios", func() {
			s, err := scenario.NewSuite(cfg)
			Expect(err).NotTo(HaveOccurred())
			r := s.Run(ctx, "nope")
			Expect(errors.Cause(r.Err)).To(Equal(hwbench.ErrConfig))
		})

		It("should report assertion failures and keep going", func() {
			s, err := scenario.NewSuite(cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Add(
				scenario.Scenario{Name: "bad", Circuit: "dff", Run: func(t *scenario.T) error {
					sq := t.Seq()
					sq.Step("load")
					sq.Write("data", 0x42)
					sq.Cycle()
					sq.Expect("q", 0x43)
					return sq.Err()
				}},
				scenario.Scenario{Name: "good", Circuit: "dff", Run: func(t *scenario.T) error {
					return t.RequireParam(hwlib.ParamWidth, 8)
				}},
			)).To(Succeed())
			rep := s.RunAll(ctx, nil)
			Expect(rep.Failed()).To(Equal(1))
			Expect(rep.Results[0].Name).To(Equal("bad"))
			var ae *hwtest.AssertionError
			Expect(errors.As(rep.Results[0].Err, &ae)).To(BeTrue())
			Expect(ae.Signal).To(Equal("q"))
			Expect(ae.Got).To(Equal(uint64(0x42)))
			Expect(ae.Edge).To(Equal(uint64(1)))
			Expect(rep.Results[1].Passed()).To(BeTrue())

			var b bytes.Buffer
			Expect(rep.Write(&b, false)).To(Succeed())
			Expect(b.String()).To(ContainSubstring("FAIL  bad"))
			Expect(b.String()).To(ContainSubstring("step load: q = 0x42, expected 0x43"))
			Expect(b.String()).To(ContainSubstring("2 scenarios, 1 failed"))
		})

		It("should time out", func() {
			cfg.Timeout = 10
			s, err := scenario.NewSuite(cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Add(scenario.Scenario{Name: "stuck", Circuit: "dff", Run: func(t *scenario.T) error {
				return t.WaitUntil("q", 1, 100)
			}})).To(Succeed())
			r := s.Run(ctx, "stuck")
			Expect(errors.Cause(r.Err)).To(Equal(hwbench.ErrTimeout))
		})

		It("should report circuit and parameter mismatches", func() {
			s, err := scenario.NewSuite(cfg, scenario.WithCircuit("broken", func(*scenario.Config) (*hwbench.PartSpec, error) {
				return nil, errors.Wrap(hwbench.ErrConfig, "broken")
			}))
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Add(
				scenario.Scenario{Name: "broken", Circuit: "broken", Run: func(*scenario.T) error { return nil }},
				scenario.Scenario{Name: "width", Circuit: "dff", Run: func(t *scenario.T) error {
					return t.RequireParam(hwlib.ParamWidth, 16)
				}},
			)).To(Succeed())
			for _, n := range []string{"broken", "width"} {
				Expect(errors.Cause(s.Run(ctx, n).Err)).To(Equal(hwbench.ErrConfig), n)
			}
		})

		It("should recover from panics", func() {
			s, err := scenario.NewSuite(cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Add(scenario.Scenario{Name: "panic", Run: func(*scenario.T) error { panic("boom") }})).To(Succeed())
			Expect(s.Run(ctx, "panic").Err).To(MatchError(ContainSubstring("boom")))
		})
	})

	Describe("Add", func() {
		It("should reject duplicates and unknown circuits", func() {
			s, err := scenario.NewSuite(cfg)
			Expect(err).NotTo(HaveOccurred())
			sc := scenario.Scenario{Name: "x", Circuit: "dff", Run: func(*scenario.T) error { return nil }}
			Expect(s.Add(sc)).To(Succeed())
			Expect(errors.Cause(s.Add(sc))).To(Equal(hwbench.ErrConfig))
			sc.Name, sc.Circuit = "y", "nope"
			Expect(errors.Cause(s.Add(sc))).To(Equal(hwbench.ErrConfig))
		})
	})

	Describe("scripts", func() {
		It("should run Lua scenarios", func() {
			s, err := scenario.NewSuite(cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Add(
				scenario.SourceScenario("count", scenario.CircuitFetch, `
write("async_rst_n", 0)
write("pc_source_e", 0)
write("prediction_source_d", 0)
write("enable_fetch_h", 1)
cycle()
nextstep()
write("async_rst_n", 1)
for pc = 4, 32, 4 do
	cycle()
	expect("pc_f", pc)
	expect("pc_plus_4_f", pc + 4)
end`),
				scenario.SourceScenario("fail", "dff", `
write("data", randint(16))
cycle()
expect("q", 0x80)`),
			)).To(Succeed())
			rep := s.RunAll(ctx, regexp.MustCompile(`^script/`))
			Expect(rep.Results).To(HaveLen(2))
			Expect(rep.Results[0].Err).NotTo(HaveOccurred())
			_, ok := rep.Results[1].Err.(*hwtest.AssertionError)
			Expect(ok).To(BeTrue())
		})
	})
})
