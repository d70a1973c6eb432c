package scene_test

import (
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/dominoes/internal/config"
	"github.com/san-kum/dominoes/internal/layout"
	"github.com/san-kum/dominoes/internal/metrics"
	"github.com/san-kum/dominoes/internal/physics"
	"github.com/san-kum/dominoes/internal/render"
	"github.com/san-kum/dominoes/internal/scene"
)

func writeTextures(dir string) {
	for _, name := range []string{config.DefaultSphereMap, config.DefaultPlaneMap} {
		path := filepath.Join(dir, name)
		Expect(os.MkdirAll(filepath.Dir(path), 0o755)).To(Succeed())
		f, err := os.Create(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(png.Encode(f, image.NewRGBA(image.Rect(0, 0, 4, 4)))).To(Succeed())
		Expect(f.Close()).To(Succeed())
	}
}

var _ = Describe("Session", func() {
	var (
		cfg *config.Config
		rec *render.Recorder
	)

	BeforeEach(func() {
		dir := GinkgoT().TempDir()
		writeTextures(dir)
		cfg = config.DefaultConfig()
		cfg.Scene.AssetDir = dir
		rec = render.NewRecorder()
	})

	Context("with the default layout", func() {
		var s *scene.Session

		BeforeEach(func() {
			var err error
			s, err = scene.Start(cfg, rec)
			Expect(err).NotTo(HaveOccurred())
			DeferCleanup(s.Close)
		})

		It("creates one body per domino plus the ground and the sphere", func() {
			Expect(s.NumDominoes()).To(Equal(40))
			Expect(s.World().NumBodies()).To(Equal(42))
			Expect(s.Batch().Len()).To(Equal(40))

			shape, ok := s.World().Shape(s.Sphere())
			Expect(ok).To(BeTrue())
			Expect(shape).To(Equal(physics.ShapeSphere))
		})

		It("hands the renderer a scene before any frame", func() {
			Expect(rec.Scene).NotTo(BeNil())
			Expect(rec.Frames).To(Equal(0))
			Expect(rec.Textures).To(HaveLen(2))
			Expect(rec.Scene.Dominoes.Batch).To(BeIdenticalTo(s.Batch()))
			Expect(rec.Scene.Sphere.Material.NormalMap.Path).To(HaveSuffix("map-sphere.png"))
		})

		It("matches every batch slot to its body after a frame", func() {
			s.OnFrame(1.0 / 60)

			Expect(s.Batch().Version()).To(Equal(uint64(2)))
			for i, h := range s.Handles() {
				want := s.World().Transform(h)
				got := s.Batch().Transform(i)
				for k := range want {
					Expect(float64(got[k])).To(BeNumerically("~", want[k], 1e-5))
				}
			}
			Expect(rec.Frames).To(Equal(1))
			Expect(rec.LastDominoes).To(HaveLen(40))
		})

		It("sends the sphere into the arc and starts the chain", func() {
			toppled := metrics.NewToppled(metrics.DefaultToppleAngle)
			history := metrics.NewHistory(10, 0)
			s.AddMetric(toppled)
			s.AddObserver(history)

			Expect(s.Advance(5)).To(Equal(300))

			Expect(s.Tilt(0)).To(BeNumerically(">", 0.3), "first arc domino should have fallen")
			Expect(toppled.Value()).To(BeNumerically(">=", 1))
			Expect(history.Len()).To(Equal(30))
			Expect(s.Results()).To(HaveKey("toppled"))

			// the chain never reaches the middle of the -z row
			spec := cfg.Layout
			far := spec.ArcCount + spec.StraightCount - 1
			Expect(far).To(Equal(24))
			Expect(spec.Segment(far)).To(Equal("row-"))
			Expect(s.Tilt(far)).To(BeNumerically("<", 0.05))
			start := layout.Generate(spec)[far].Position
			Expect(s.World().Position(s.Handles()[far]).Sub(start).Len()).To(BeNumerically("<", 0.05))
		})

		It("keeps running when a draw fails", func() {
			rec.FailDraw = errors.New("lost device")
			s.OnFrame(1.0 / 60)
			s.OnFrame(1.0 / 60)

			Expect(s.DrawErrors()).To(Equal(2))
			Expect(s.Frame()).To(Equal(2))
			Expect(s.World().StepCount()).To(Equal(2))
		})

		It("uses the fixed step whatever the frame time", func() {
			s.OnFrame(0.5)
			Expect(s.World().Time()).To(BeNumerically("~", 1.0/60, 1e-12))
		})

		It("stops on context cancellation", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			err := s.Run(ctx, time.Millisecond)
			Expect(err).To(MatchError(context.DeadlineExceeded))
			Expect(s.Frame()).To(BeNumerically(">", 0))
		})
	})

	It("clamps variable frame times to max_dt", func() {
		cfg.Scene.FixedDt = 0
		s, err := scene.Start(cfg, rec)
		Expect(err).NotTo(HaveOccurred())

		s.OnFrame(2)
		Expect(s.World().Time()).To(BeNumerically("~", cfg.Scene.MaxDt, 1e-12))
	})

	It("starts an empty layout", func() {
		cfg.Layout.ArcCount = 0
		cfg.Layout.StraightCount = 0

		s, err := scene.Start(cfg, rec)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.NumDominoes()).To(Equal(0))

		s.OnFrame(1.0 / 60)
		Expect(rec.Frames).To(Equal(1))
		Expect(rec.LastDominoes).To(BeEmpty())
	})

	It("aborts when a texture is missing", func() {
		cfg.Scene.Ground.NormalMap = "textures/nope.png"

		s, err := scene.Start(cfg, rec)
		Expect(s).To(BeNil())
		Expect(errors.Is(err, scene.ErrResource)).To(BeTrue())
		Expect(errors.Is(err, os.ErrNotExist)).To(BeTrue())

		var resErr *scene.ResourceError
		Expect(errors.As(err, &resErr)).To(BeTrue())
		Expect(resErr.Asset).To(HaveSuffix("nope.png"))
		Expect(rec.Scene).To(BeNil(), "renderer must not be set up")
	})

	It("aborts without a renderer", func() {
		s, err := scene.Start(cfg, nil)
		Expect(s).To(BeNil())
		Expect(errors.Is(err, scene.ErrResource)).To(BeTrue())

		var resErr *scene.ResourceError
		Expect(errors.As(err, &resErr)).To(BeTrue())
		Expect(resErr.Asset).To(Equal("renderer"))
	})

	It("rejects an invalid layout before touching the renderer", func() {
		cfg.Layout.ArcCount = -3

		_, err := scene.Start(cfg, rec)
		Expect(errors.Is(err, layout.ErrInvalidSpec)).To(BeTrue())
		Expect(rec.Textures).To(BeEmpty())
	})

	It("gives the same colours for the same seed", func() {
		a, err := scene.Start(cfg, render.NewRecorder())
		Expect(err).NotTo(HaveOccurred())
		b, err := scene.Start(cfg, render.NewRecorder())
		Expect(err).NotTo(HaveOccurred())

		Expect(a.Batch().Colors()).To(Equal(b.Batch().Colors()))
	})
})
