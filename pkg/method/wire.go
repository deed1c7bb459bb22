package method

import (
	"fmt"
	"os"
	"sort"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"

	"rjit/pkg/heap"
)

// cborEncMode uses canonical CBOR so that identical images encode to
// identical bytes.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("method: cbor enc mode: %v", err))
	}
	cborEncMode = em
}

// Image is a whole compiled program.
type Image struct {
	ID      string                  `cbor:"1,keyasint"`
	Heap    heap.Layout             `cbor:"2,keyasint"`
	Globals map[string]heap.Address `cbor:"3,keyasint"`
	Methods []*Descriptor           `cbor:"4,keyasint"`
}

// NewImage starts an empty image with a fresh build id.
func NewImage(layout heap.Layout, globals map[string]heap.Address) *Image {
	return &Image{
		ID:      uuid.NewString(),
		Heap:    layout,
		Globals: globals,
	}
}

// Method finds a descriptor by name.
func (img *Image) Method(name string) (*Descriptor, bool) {
	for _, d := range img.Methods {
		if d.Name == name {
			return d, true
		}
	}
	return nil, false
}

// Sort orders methods by name.
func (img *Image) Sort() {
	sort.Slice(img.Methods, func(i, j int) bool { return img.Methods[i].Name < img.Methods[j].Name })
}

func MarshalDescriptor(d *Descriptor) ([]byte, error) {
	return cborEncMode.Marshal(d)
}

func UnmarshalDescriptor(data []byte) (*Descriptor, error) {
	var d Descriptor
	if err := cbor.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("method: unmarshal descriptor: %w", err)
	}
	return &d, nil
}

func Marshal(img *Image) ([]byte, error) {
	return cborEncMode.Marshal(img)
}

func Unmarshal(data []byte) (*Image, error) {
	var img Image
	if err := cbor.Unmarshal(data, &img); err != nil {
		return nil, fmt.Errorf("method: unmarshal image: %w", err)
	}
	if _, err := uuid.Parse(img.ID); err != nil {
		return nil, fmt.Errorf("method: image id %q: %w", img.ID, err)
	}
	return &img, nil
}

func WriteFile(path string, img *Image) error {
	data, err := Marshal(img)
	if err != nil {
		return fmt.Errorf("method: marshal image: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func ReadFile(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Unmarshal(data)
}
