package item

import (
	"fmt"
	"image"
	"math"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog/log"
	ort "github.com/yalue/onnxruntime_go"
)

const (
	// MinProbability is the softmax probability below which a
	// classification is flagged low-confidence.
	MinProbability = 0.8
	// LearnedMaxMSE is the largest difference at which a learned cell is
	// still taken for the same item.
	LearnedMaxMSE = 325
	defaultInput  = 64
)

var (
	runtimeOnce sync.Once
	runtimeErr  error
)

// InitRuntime loads the onnxruntime shared library once per process.
func InitRuntime(libPath string) error {
	runtimeOnce.Do(func() {
		if libPath != "" {
			ort.SetSharedLibraryPath(libPath)
		}
		runtimeErr = ort.InitializeEnvironment()
		if runtimeErr == nil {
			log.Info().Str("lib", libPath).Msg("onnxruntime initialized")
		}
	})
	return runtimeErr
}

// Classifier identifies items with the material classification model.
// Cells it is unsure about are looked up in, and optionally added to, Store.
type Classifier struct {
	mu       sync.Mutex
	session  *ort.DynamicAdvancedSession
	width    int
	height   int
	relation *Relation

	Store *Store
}

// NewClassifier opens the model at path. The runtime must be initialized
// with InitRuntime first.
func NewClassifier(path string, store *Store) (*Classifier, error) {
	inputs, outputs, err := ort.GetInputOutputInfo(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}
	if len(inputs) != 1 || len(outputs) != 1 {
		return nil, fmt.Errorf("%w: expected one input and one output, got %d and %d",
			ErrModelUnavailable, len(inputs), len(outputs))
	}

	meta, err := ort.GetModelMetadata(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model metadata: %w", err)
	}
	data, ok, err := meta.LookupCustomMetadataMap("relation")
	meta.Destroy()
	if err != nil || !ok {
		return nil, fmt.Errorf("%w: relation metadata missing", ErrModelUnavailable)
	}
	rel, err := ParseRelation(data)
	if err != nil {
		return nil, err
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("failed to create session options: %w", err)
	}
	defer options.Destroy()
	session, err := ort.NewDynamicAdvancedSession(path,
		[]string{inputs[0].Name}, []string{outputs[0].Name}, options)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	w, h := defaultInput, defaultInput
	if dims := inputs[0].Dimensions; len(dims) == 4 && dims[2] > 0 && dims[3] > 0 {
		h, w = int(dims[2]), int(dims[3])
	}
	log.Info().
		Int("classes", len(rel.Idx2ID)).
		Int64("modelTime", rel.Time).
		Int("inputW", w).
		Int("inputH", h).
		Msg("Item model loaded")

	return &Classifier{
		session:  session,
		width:    w,
		height:   h,
		relation: rel,
		Store:    store,
	}, nil
}

// Close releases the inference session.
func (c *Classifier) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Destroy()
}

// Classify identifies the item in a cell. learn stores the cell when the
// model is unsure and no learned item matches.
func (c *Classifier) Classify(img image.Image, learn bool) (*RecognizedItem, error) {
	probs, err := c.infer(img)
	if err != nil {
		return nil, err
	}
	class, prob := argmax(probs)
	rec, ok := c.relation.Record(class)
	if !ok {
		return nil, fmt.Errorf("class %d outside relation of %d items", class, len(c.relation.Idx2ID))
	}

	result := &RecognizedItem{ItemID: rec.ID, Name: rec.Name, ItemType: rec.Type}
	if prob < MinProbability {
		result.LowConfidence = true
		if c.Store != nil {
			if name, ok := c.Store.Match(img, LearnedMaxMSE); ok {
				result = &RecognizedItem{ItemID: name, Name: name, ItemType: "UNKNOWN"}
			} else if learn {
				name, err := c.Store.Add(img)
				if err != nil {
					return nil, err
				}
				result.ItemID, result.Name, result.ItemType = name, name, "UNKNOWN"
			}
		}
	}
	log.Debug().
		Str("item", result.Name).
		Float64("prob", prob).
		Bool("lowConfidence", result.LowConfidence).
		Msg("Item classified")
	return result, nil
}

func (c *Classifier) infer(img image.Image) ([]float32, error) {
	data := chwTensor(img, c.width, c.height)
	input, err := ort.NewTensor(ort.NewShape(1, 3, int64(c.height), int64(c.width)), data)
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}
	defer input.Destroy()

	outputs := []ort.Value{nil}
	c.mu.Lock()
	err = c.session.Run([]ort.Value{input}, outputs)
	c.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("item inference failed: %w", err)
	}
	defer outputs[0].Destroy()

	out, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("unexpected output type %T", outputs[0])
	}
	return softmax(out.GetData()), nil
}

// chwTensor resizes img to w x h and lays it out as planar RGB in [0, 1].
func chwTensor(img image.Image, w, h int) []float32 {
	resized := imaging.Resize(img, w, h, imaging.Linear)
	plane := w * h
	data := make([]float32, 3*plane)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := resized.PixOffset(x, y)
			p := y*w + x
			data[p] = float32(resized.Pix[i]) / 255
			data[plane+p] = float32(resized.Pix[i+1]) / 255
			data[2*plane+p] = float32(resized.Pix[i+2]) / 255
		}
	}
	return data
}

func softmax(logits []float32) []float32 {
	if len(logits) == 0 {
		return nil
	}
	maxV := logits[0]
	for _, v := range logits[1:] {
		if v > maxV {
			maxV = v
		}
	}
	out := make([]float32, len(logits))
	var sum float64
	for i, v := range logits {
		e := math.Exp(float64(v - maxV))
		out[i] = float32(e)
		sum += e
	}
	for i := range out {
		out[i] = float32(float64(out[i]) / sum)
	}
	return out
}

func argmax(v []float32) (int, float64) {
	best := 0
	for i := range v {
		if v[i] > v[best] {
			best = i
		}
	}
	if len(v) == 0 {
		return 0, 0
	}
	return best, float64(v[best])
}
