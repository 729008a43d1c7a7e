package storage

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/rkode/internal/dynamo"
)

var _ = Describe("Store", func() {
	var (
		st     *Store
		dir    string
		clock  time.Time
		info   RunInfo
		result *dynamo.Result
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		st = New(dir)
		clock = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		st.now = func() time.Time {
			clock = clock.Add(time.Second)
			return clock
		}
		Expect(st.Init()).To(Succeed())

		info = RunInfo{
			Model:      "growth",
			Integrator: "rk4",
			T0:         0,
			Y0:         1,
			Dt:         0.5,
			TF:         1,
			Endpoint:   "clamp",
		}
		result = &dynamo.Result{
			Trajectory: dynamo.Trajectory{
				T: []float64{0, 0.5, 1},
				Y: []float64{1, 1.6484375, 2.7173144531},
			},
			StepsTaken:  2,
			Evaluations: 8,
		}
	})

	Describe("Save and Load", func() {
		It("round-trips metadata and samples", func() {
			runID, err := st.Save(info, result, map[string]float64{"max_error": 1e-3})
			Expect(err).NotTo(HaveOccurred())
			Expect(runID).To(HavePrefix("growth_rk4_"))

			meta, err := st.Load(runID)
			Expect(err).NotTo(HaveOccurred())
			Expect(meta.ID).To(Equal(runID))
			Expect(meta.Model).To(Equal("growth"))
			Expect(meta.Samples).To(Equal(3))
			Expect(meta.Evaluations).To(Equal(8))
			Expect(meta.Metrics).To(HaveKeyWithValue("max_error", 1e-3))

			traj, err := st.LoadTrajectory(runID)
			Expect(err).NotTo(HaveOccurred())
			Expect(traj.T).To(Equal(result.T))
			Expect(traj.Y).To(Equal(result.Y))
		})

		It("creates the expected files", func() {
			runID, err := st.Save(info, result, nil)
			Expect(err).NotTo(HaveOccurred())

			Expect(filepath.Join(dir, runID, "metadata.json")).To(BeAnExistingFile())
			Expect(filepath.Join(dir, runID, "trajectory.csv")).To(BeAnExistingFile())
		})

		It("keeps non-finite samples", func() {
			result.Y[2] = math.Inf(1)
			runID, err := st.Save(info, result, nil)
			Expect(err).NotTo(HaveOccurred())

			traj, err := st.LoadTrajectory(runID)
			Expect(err).NotTo(HaveOccurred())
			Expect(math.IsInf(traj.Y[2], 1)).To(BeTrue())
		})

		It("drops non-finite metrics and still saves", func() {
			result.Y[2] = math.NaN()
			runID, err := st.Save(info, result, map[string]float64{
				"max_error":   math.NaN(),
				"final_error": math.Inf(1),
				"evaluations": 8,
			})
			Expect(err).NotTo(HaveOccurred())

			meta, err := st.Load(runID)
			Expect(err).NotTo(HaveOccurred())
			Expect(meta.Metrics).To(Equal(map[string]float64{"evaluations": 8}))

			traj, err := st.LoadTrajectory(runID)
			Expect(err).NotTo(HaveOccurred())
			Expect(math.IsNaN(traj.Y[2])).To(BeTrue())
		})

		It("leaves no run directory when metadata cannot be encoded", func() {
			info.Tolerance = math.NaN()
			_, err := st.Save(info, result, nil)
			Expect(err).To(HaveOccurred())

			entries, err := os.ReadDir(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(BeEmpty())
		})

		It("rejects a nil result", func() {
			_, err := st.Save(info, nil, nil)
			Expect(err).To(HaveOccurred())
		})

		It("fails for unknown runs", func() {
			_, err := st.Load("missing")
			Expect(err).To(HaveOccurred())
			_, err = st.LoadTrajectory("missing")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("run ids", func() {
		It("stay unique when the clock does not advance", func() {
			frozen := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
			st.now = func() time.Time { return frozen }

			a, err := st.Save(info, result, nil)
			Expect(err).NotTo(HaveOccurred())
			b, err := st.Save(info, result, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(a).NotTo(Equal(b))
		})
	})

	Describe("List", func() {
		It("is empty for a fresh store", func() {
			runs, err := st.List()
			Expect(err).NotTo(HaveOccurred())
			Expect(runs).To(BeEmpty())
		})

		It("is empty when the directory does not exist", func() {
			runs, err := New(filepath.Join(dir, "absent")).List()
			Expect(err).NotTo(HaveOccurred())
			Expect(runs).To(BeEmpty())
		})

		It("returns runs oldest first and skips junk", func() {
			first, err := st.Save(info, result, nil)
			Expect(err).NotTo(HaveOccurred())
			info.Integrator = "rk45"
			second, err := st.Save(info, result, nil)
			Expect(err).NotTo(HaveOccurred())

			Expect(os.Mkdir(filepath.Join(dir, "junk"), 0755)).To(Succeed())

			runs, err := st.List()
			Expect(err).NotTo(HaveOccurred())
			Expect(runs).To(HaveLen(2))
			Expect(runs[0].ID).To(Equal(first))
			Expect(runs[1].ID).To(Equal(second))
		})
	})

	Describe("Delete", func() {
		It("removes the run", func() {
			runID, err := st.Save(info, result, nil)
			Expect(err).NotTo(HaveOccurred())

			Expect(st.Delete(runID)).To(Succeed())
			Expect(filepath.Join(dir, runID)).NotTo(BeADirectory())
			Expect(st.Delete(runID)).NotTo(Succeed())
		})

		It("refuses ids outside the store", func() {
			outside := filepath.Join(filepath.Dir(dir), "victim")
			Expect(os.MkdirAll(outside, 0755)).To(Succeed())
			Expect(os.WriteFile(filepath.Join(outside, "metadata.json"), []byte("{}"), 0644)).To(Succeed())
			DeferCleanup(os.RemoveAll, outside)

			for _, id := range []string{"../victim", "..", "", "a/b", `a\\b`} {
				Expect(st.Delete(id)).To(MatchError(ErrInvalidRunID))
				_, err := st.Load(id)
				Expect(err).To(MatchError(ErrInvalidRunID))
				_, err = st.LoadTrajectory(id)
				Expect(err).To(MatchError(ErrInvalidRunID))
			}
			Expect(outside).To(BeADirectory())
		})
	})
})

var _ = Describe("Export", func() {
	traj := dynamo.Trajectory{T: []float64{0, 0.1}, Y: []float64{1, 1.1051709}}

	It("writes a t,y csv", func() {
		var buf bytes.Buffer
		Expect(WriteCSV(&buf, traj)).To(Succeed())
		Expect(buf.String()).To(Equal("t,y\n0,1\n0.1,1.1051709\n"))
	})

	It("writes metadata and samples as json", func() {
		var buf bytes.Buffer
		meta := RunMetadata{ID: "growth_rk4_1", RunInfo: RunInfo{Model: "growth"}}
		Expect(ExportJSON(&buf, meta, traj)).To(Succeed())

		var decoded map[string]any
		Expect(json.Unmarshal(buf.Bytes(), &decoded)).To(Succeed())
		Expect(decoded).To(HaveKeyWithValue("id", "growth_rk4_1"))
		Expect(decoded).To(HaveKeyWithValue("model", "growth"))
		Expect(decoded["values"]).To(HaveLen(2))
	})
})
