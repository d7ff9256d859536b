package orientation

import (
	"errors"
	"testing"

	"gocv.io/x/gocv"
)

// fixedDetector always reports the same rotation.
type fixedDetector struct {
	rotation int
	err      error
}

func (d fixedDetector) DetectRotation(mat gocv.Mat) (int, error) {
	return d.rotation, d.err
}

func landscapeMat(t *testing.T) gocv.Mat {
	t.Helper()
	mat := gocv.NewMatWithSize(80, 120, gocv.MatTypeCV8UC3)
	if mat.Empty() {
		t.Fatal("Failed to create test mat")
	}
	return mat
}

func TestCorrect_NoRotation(t *testing.T) {
	corrector := NewCorrector(fixedDetector{rotation: 0})

	src := landscapeMat(t)
	defer src.Close()

	upright, applied := corrector.Correct(src)
	defer upright.Close()

	if applied != 0 {
		t.Errorf("Expected applied rotation 0, got %d", applied)
	}
	if upright.Rows() != src.Rows() || upright.Cols() != src.Cols() {
		t.Errorf("Dimensions changed without rotation: %dx%d", upright.Rows(), upright.Cols())
	}
}

func TestCorrect_CardinalRotationSwapsDimensions(t *testing.T) {
	for _, rotation := range []int{90, 270} {
		corrector := NewCorrector(fixedDetector{rotation: rotation})

		src := landscapeMat(t)
		upright, applied := corrector.Correct(src)

		if applied != rotation {
			t.Errorf("Expected applied rotation %d, got %d", rotation, applied)
		}
		if upright.Rows() != src.Cols() || upright.Cols() != src.Rows() {
			t.Errorf("Rotation %d: expected swapped dimensions, got %dx%d", rotation, upright.Rows(), upright.Cols())
		}
		upright.Close()
		src.Close()
	}
}

func TestCorrect_NormalizesAngle(t *testing.T) {
	corrector := NewCorrector(fixedDetector{rotation: -90})

	src := landscapeMat(t)
	defer src.Close()

	upright, applied := corrector.Correct(src)
	defer upright.Close()

	if applied != 270 {
		t.Errorf("Expected -90 to normalize to 270, got %d", applied)
	}
}

func TestCorrect_DetectorFailureIsNonFatal(t *testing.T) {
	corrector := NewCorrector(fixedDetector{err: errors.New("no text signal")})

	src := landscapeMat(t)
	defer src.Close()

	upright, applied := corrector.Correct(src)
	defer upright.Close()

	if applied != 0 {
		t.Errorf("Expected no rotation on detector failure, got %d", applied)
	}
}

// queueScorer replays canned scores in probe order: 0, 90, 180, 270.
type queueScorer struct {
	scores []float64
	next   int
}

func (q *queueScorer) ScoreText(png []byte) (float64, error) {
	if q.next >= len(q.scores) {
		return 0, errors.New("no more scores")
	}
	s := q.scores[q.next]
	q.next++
	return s, nil
}

func TestDetectRotation_PicksClearWinner(t *testing.T) {
	detector := NewOSDDetector(&queueScorer{scores: []float64{1.0, 2.0, 0.5, 0.5}})

	src := landscapeMat(t)
	defer src.Close()

	rotation, err := detector.DetectRotation(src)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if rotation != 90 {
		t.Errorf("Expected 90, got %d", rotation)
	}
}

func TestDetectRotation_SmallGainKeepsUpright(t *testing.T) {
	// 1.1 does not clear the required gain over the unrotated score.
	detector := NewOSDDetector(&queueScorer{scores: []float64{1.0, 1.1, 0.2, 0.2}})

	src := landscapeMat(t)
	defer src.Close()

	rotation, err := detector.DetectRotation(src)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if rotation != 0 {
		t.Errorf("Expected 0, got %d", rotation)
	}
}

func TestDetectRotation_NoTextSignal(t *testing.T) {
	detector := NewOSDDetector(&queueScorer{scores: []float64{0, 0, 0, 0}})

	src := landscapeMat(t)
	defer src.Close()

	if _, err := detector.DetectRotation(src); err == nil {
		t.Error("Expected error when no orientation has text signal")
	}
}
