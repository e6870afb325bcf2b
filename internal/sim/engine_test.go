package sim_test

import (
	"context"
	"math"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/gravsim/internal/distrib"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/integrators"
	"github.com/san-kum/gravsim/internal/physics"
	"github.com/san-kum/gravsim/internal/sim"
	"gonum.org/v1/gonum/spatial/r3"
)

type counter struct {
	observed int
	lastT    float64
}

func (c *counter) Name() string { return "count" }
func (c *counter) Observe(_, _ dynamo.View, t float64) {
	c.observed++
	c.lastT = t
}
func (c *counter) Value() float64 { return float64(c.observed) }
func (c *counter) Reset()         { c.observed, c.lastT = 0, 0 }

func opts(seed uint64) sim.Options {
	return sim.Options{Seed: seed}
}

func snapshot(e *sim.Engine) ([]r3.Vec, []r3.Vec) {
	return e.Positions().CopyTo(nil), e.Velocities().CopyTo(nil)
}

var _ = Describe("Engine", func() {
	Describe("construction", func() {
		DescribeTable("yields n finite positions",
			func(n int, dist distrib.Distribution) {
				e, err := sim.New(n, dist, opts(1))
				Expect(err).NotTo(HaveOccurred())

				pos := e.Positions()
				Expect(pos.Len()).To(Equal(n))
				for _, p := range pos.All() {
					Expect(dynamo.IsFinite(p)).To(BeTrue())
				}
				Expect(e.Time()).To(BeZero())
			},
			Entry("single sphere body", 1, distrib.DefaultSphere()),
			Entry("two sphere bodies", 2, distrib.DefaultSphere()),
			Entry("cylinder", 17, distrib.DefaultCylinder()),
			Entry("larger cylinder", 300, distrib.DefaultCylinder()),
		)

		DescribeTable("rejects invalid configuration",
			func(n int, dist distrib.Distribution, o sim.Options) {
				_, err := sim.New(n, dist, o)
				Expect(err).To(MatchError(dynamo.ErrInvalidConfig))

				var ce *dynamo.ConfigError
				Expect(err).To(BeAssignableToTypeOf(ce))
			},
			Entry("zero bodies", 0, distrib.DefaultSphere(), opts(1)),
			Entry("negative bodies", -3, distrib.DefaultSphere(), opts(1)),
			Entry("nil distribution", 4, nil, opts(1)),
			Entry("inverted radius", 4, distrib.Sphere{Radius: distrib.Range{Min: 2, Max: 1}}, opts(1)),
			Entry("inverted height", 4, distrib.Cylinder{
				Radius: distrib.Range{Max: 1},
				Height: distrib.Range{Min: 1, Max: -1},
			}, opts(1)),
			Entry("negative step", 4, distrib.DefaultSphere(), sim.Options{StepSize: -1}),
			Entry("invalid force", 4, distrib.DefaultSphere(), sim.Options{Force: physics.Gravity{G: math.NaN()}}),
		)

		It("is deterministic for a given seed", func() {
			a, err := sim.New(100, distrib.DefaultCylinder(), opts(99))
			Expect(err).NotTo(HaveOccurred())
			b, err := sim.New(100, distrib.DefaultCylinder(), opts(99))
			Expect(err).NotTo(HaveOccurred())

			pa, va := snapshot(a)
			pb, vb := snapshot(b)
			Expect(pa).To(Equal(pb))
			Expect(va).To(Equal(vb))
		})
	})

	Describe("stepping", func() {
		It("leaves a force-free system at rest", func() {
			e, err := sim.New(2, distrib.DefaultSphere(), sim.Options{
				Seed:  3,
				Force: physics.Gravity{G: 0, Damping: 0},
			})
			Expect(err).NotTo(HaveOccurred())
			pos0, vel0 := snapshot(e)

			for i := 0; i < 10; i++ {
				e.Step()
			}

			pos1, vel1 := snapshot(e)
			for i := range pos0 {
				Expect(r3.Norm(r3.Sub(pos1[i], pos0[i]))).To(BeNumerically("<", 1e-12))
				Expect(r3.Norm(r3.Sub(vel1[i], vel0[i]))).To(BeNumerically("<", 1e-12))
			}
			Expect(e.Time()).To(BeNumerically("~", 10*sim.DefaultStepSize, 1e-12))
			Expect(e.Steps()).To(Equal(10))
		})

		It("applies a semi-implicit Euler step to an attracting pair", func() {
			e, err := sim.New(2, distrib.Points{
				Positions:  []r3.Vec{{X: -0.5}, {X: 0.5}},
				Velocities: []r3.Vec{{}, {}},
			}, sim.Options{
				StepSize:   0.1,
				Force:      physics.Gravity{G: 1, Damping: 0},
				Integrator: integrators.NewEuler(),
			})
			Expect(err).NotTo(HaveOccurred())

			e.Step()

			pos, vel := snapshot(e)
			Expect(vel[0].X).To(BeNumerically("~", 0.1, 1e-12))
			Expect(vel[1].X).To(BeNumerically("~", -0.1, 1e-12))
			Expect(pos[0].X).To(BeNumerically("~", -0.49, 1e-12))
			Expect(pos[1].X).To(BeNumerically("~", 0.49, 1e-12))
		})

		It("keeps a Lennard-Jones pair at equilibrium still", func() {
			req := math.Pow(2, 1.0/6.0)
			e, err := sim.New(2, distrib.Points{
				Positions:  []r3.Vec{{}, {Y: req}},
				Velocities: []r3.Vec{{}, {}},
			}, sim.Options{
				StepSize:   0.01,
				Force:      physics.LennardJones{Eps: 1, Sigma: 1},
				Integrator: integrators.NewRK4(),
			})
			Expect(err).NotTo(HaveOccurred())

			Expect(e.Run(context.Background(), 50, nil)).To(Succeed())

			pos, _ := snapshot(e)
			Expect(r3.Norm(r3.Sub(pos[1], pos[0]))).To(BeNumerically("~", req, 1e-9))
		})

		It("gives the same result for any worker count", func() {
			run := func(workers int) []r3.Vec {
				e, err := sim.New(400, distrib.DefaultCylinder(), sim.Options{
					Seed:       21,
					Workers:    workers,
					Force:      physics.Gravity{G: 1e-3, Damping: 1e-3},
					Integrator: integrators.NewRK4(),
				})
				Expect(err).NotTo(HaveOccurred())
				Expect(e.Run(context.Background(), 5, nil)).To(Succeed())
				return e.CopyPositions(nil)
			}

			Expect(run(1)).To(Equal(run(8)))
		})

		It("conserves momentum under Euler gravity", func() {
			e, err := sim.New(200, distrib.DefaultCylinder(), sim.Options{
				Seed:  8,
				Force: physics.Gravity{G: 1e-4, Damping: 1e-3},
			})
			Expect(err).NotTo(HaveOccurred())
			p0 := physics.Momentum(e.Velocities().CopyTo(nil))

			Expect(e.Run(context.Background(), 20, nil)).To(Succeed())

			p1 := physics.Momentum(e.Velocities().CopyTo(nil))
			Expect(r3.Norm(r3.Sub(p1, p0))).To(BeNumerically("<", 1e-9))
		})

		It("runs the Barnes-Hut model", func() {
			e, err := sim.New(300, distrib.DefaultSphere(), sim.Options{
				Seed:  4,
				Force: physics.NewBarnesHut(),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(e.Run(context.Background(), 3, nil)).To(Succeed())

			e.WithPositions(func(v dynamo.View) {
				for _, p := range v.All() {
					Expect(dynamo.IsFinite(p)).To(BeTrue())
				}
			})
		})

		It("hands out position snapshots that later steps leave alone", func() {
			e, err := sim.New(64, distrib.DefaultCylinder(), opts(11))
			Expect(err).NotTo(HaveOccurred())

			view := e.Positions()
			before := view.CopyTo(nil)
			Expect(e.Run(context.Background(), 3, nil)).To(Succeed())

			Expect(view.CopyTo(nil)).To(Equal(before))
			Expect(e.CopyPositions(nil)).NotTo(Equal(before))
		})

		It("never exposes a generation mid-update", func() {
			e, err := sim.New(256, distrib.DefaultCylinder(), sim.Options{Seed: 5, Workers: 4})
			Expect(err).NotTo(HaveOccurred())

			var wg sync.WaitGroup
			done := make(chan struct{})
			wg.Add(1)
			go func() {
				defer GinkgoRecover()
				defer wg.Done()
				for {
					select {
					case <-done:
						return
					default:
					}
					e.WithPositions(func(v dynamo.View) {
						Expect(v.Len()).To(Equal(256))
						for _, p := range v.All() {
							Expect(dynamo.IsFinite(p)).To(BeTrue())
						}
					})
				}
			}()

			Expect(e.Run(context.Background(), 20, nil)).To(Succeed())
			close(done)
			wg.Wait()
		})
	})

	Describe("integrating a coupled pair", func() {
		// Two unit-separated bodies with G = 0.5 circle their centre at
		// unit angular speed.
		pair := func(integ integrators.Integrator) *sim.Engine {
			e, err := sim.New(2, distrib.Points{
				Positions:  []r3.Vec{{X: -0.5}, {X: 0.5}},
				Velocities: []r3.Vec{{Z: -0.5}, {Z: 0.5}},
			}, sim.Options{
				StepSize:   0.01,
				Force:      physics.Gravity{G: 0.5, Damping: 0},
				Integrator: integ,
			})
			Expect(err).NotTo(HaveOccurred())
			return e
		}

		orbitError := func(integ integrators.Integrator) float64 {
			e := pair(integ)
			worst := 0.0
			Expect(e.Run(context.Background(), 1000, func(e *sim.Engine) bool {
				tm := e.Time()
				exact := r3.Vec{X: 0.5 * math.Cos(tm), Z: 0.5 * math.Sin(tm)}
				e.WithPositions(func(v dynamo.View) {
					worst = math.Max(worst, r3.Norm(r3.Sub(v.At(1), exact)))
				})
				return true
			})).To(Succeed())
			return worst
		}

		It("holds the partner fixed during every RK4 stage", func() {
			e := pair(integrators.NewRK4())
			pos0, vel0 := snapshot(e)
			force := physics.Gravity{G: 0.5, Damping: 0}

			e.Step()

			pos1, vel1 := snapshot(e)
			for i := range pos0 {
				f := func(_, x r3.Vec, _ float64) r3.Vec {
					return force.Acceleration(i, x, pos0)
				}
				v, p, _ := integrators.NewRK4().Advance(f, 0.01, vel0[i], pos0[i], 0)
				Expect(vel1[i]).To(Equal(v))
				Expect(pos1[i]).To(Equal(p))
			}
		})

		It("lets semi-implicit Euler follow the orbit more closely than RK4", func() {
			euler := orbitError(integrators.NewEuler())
			rk4 := orbitError(integrators.NewRK4())

			Expect(euler).To(BeNumerically("<", rk4))
			Expect(rk4).To(BeNumerically(">", 1e-2))
		})
	})

	Describe("reconfiguration", func() {
		var e *sim.Engine

		BeforeEach(func() {
			var err error
			e, err = sim.New(8, distrib.DefaultSphere(), opts(2))
			Expect(err).NotTo(HaveOccurred())
		})

		It("swaps force model and integrator", func() {
			Expect(e.SetForceModel(physics.NewLennardJones())).To(Succeed())
			Expect(e.SetIntegrator(integrators.NewRK4())).To(Succeed())
			Expect(e.Force().Name()).To(Equal("lj"))
			Expect(e.Integrator().Name()).To(Equal("rk4"))
		})

		It("rejects an invalid model and keeps the old one", func() {
			err := e.SetForceModel(physics.LennardJones{Eps: 1, Sigma: -1})
			Expect(err).To(MatchError(dynamo.ErrInvalidConfig))
			Expect(e.Force().Name()).To(Equal("gravity"))

			Expect(e.SetForceModel(nil)).To(MatchError(dynamo.ErrInvalidConfig))
			Expect(e.SetIntegrator(nil)).To(MatchError(dynamo.ErrInvalidConfig))
		})
	})

	Describe("running", func() {
		It("observes metrics after every step", func() {
			e, err := sim.New(4, distrib.DefaultSphere(), opts(6))
			Expect(err).NotTo(HaveOccurred())

			c := &counter{}
			e.AddMetric(c)
			Expect(c.observed).To(Equal(1))

			Expect(e.Run(context.Background(), 3, nil)).To(Succeed())
			Expect(c.observed).To(Equal(4))
			Expect(c.lastT).To(BeNumerically("~", 3*sim.DefaultStepSize, 1e-12))
			Expect(e.Metrics()).To(HaveKeyWithValue("count", 4.0))
		})

		It("stops when the callback says so", func() {
			e, err := sim.New(4, distrib.DefaultSphere(), opts(6))
			Expect(err).NotTo(HaveOccurred())

			Expect(e.Run(context.Background(), 100, func(e *sim.Engine) bool {
				return e.Steps() < 5
			})).To(Succeed())
			Expect(e.Steps()).To(Equal(5))
		})

		It("checks the context between steps", func() {
			e, err := sim.New(4, distrib.DefaultSphere(), opts(6))
			Expect(err).NotTo(HaveOccurred())

			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			Expect(e.Run(ctx, 10, nil)).To(MatchError(context.Canceled))
			Expect(e.Steps()).To(BeZero())
		})

		It("runs independent engines together", func() {
			engines := make([]*sim.Engine, 3)
			for i := range engines {
				var err error
				engines[i], err = sim.New(32, distrib.DefaultSphere(), opts(uint64(i)))
				Expect(err).NotTo(HaveOccurred())
			}

			Expect(sim.RunAll(context.Background(), engines, 7)).To(Succeed())
			for _, e := range engines {
				Expect(e.Steps()).To(Equal(7))
			}
		})
	})
})
