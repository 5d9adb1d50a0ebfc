package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"sync"

	v1 "github.com/google/go-containerregistry/pkg/v1"
	"github.com/google/go-containerregistry/pkg/v1/empty"
	"github.com/google/go-containerregistry/pkg/v1/layout"
	"github.com/google/go-containerregistry/pkg/v1/match"
	"github.com/google/go-containerregistry/pkg/v1/mutate"
	"github.com/google/go-containerregistry/pkg/v1/types"
	"github.com/klauspost/compress/zstd"
	"github.com/sourcegraph/conc/pool"
)

// DefaultConcurrency keeps layer decoding sequential unless configured.
const DefaultConcurrency = 1

const (
	layoutRefName     = "twig"
	annotationRefName = "org.opencontainers.image.ref.name"
	labelState        = "dev.twig.state"
)

// LayoutEndpoint is a bare repository stored as an OCI image layout.
//
// The layout holds one image annotated with the ref name "twig". Its config
// label dev.twig.state carries the encoded state; every Store appends
// layers with the blobs that were not yet present. The whole image is read
// once per endpoint and kept in memory.
type LayoutEndpoint struct {
	path        string
	concurrency int

	loaded  bool
	img     v1.Image
	state   []byte
	objects map[string][]byte
}

// NewLayoutEndpoint returns an endpoint for the layout directory at path.
// The directory does not need to exist until the first Store.
func NewLayoutEndpoint(path string, concurrency int) *LayoutEndpoint {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	return &LayoutEndpoint{
		path:        path,
		concurrency: concurrency,
		objects:     make(map[string][]byte),
	}
}

func (e *LayoutEndpoint) String() string { return "oci:" + e.path }

func (e *LayoutEndpoint) LoadState(ctx context.Context) ([]byte, error) {
	if err := e.load(ctx); err != nil {
		return nil, err
	}
	if e.img == nil {
		return nil, fmt.Errorf("%w: %s", ErrEmpty, e)
	}
	return e.state, nil
}

func (e *LayoutEndpoint) List(ctx context.Context) ([]string, error) {
	if err := e.load(ctx); err != nil {
		return nil, err
	}
	hashes := make([]string, 0, len(e.objects))
	for h := range e.objects {
		hashes = append(hashes, h)
	}
	sort.Strings(hashes)
	return hashes, nil
}

func (e *LayoutEndpoint) Get(ctx context.Context, hash string) ([]byte, error) {
	if err := e.load(ctx); err != nil {
		return nil, err
	}
	data, ok := e.objects[hash]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, hash)
	}
	return data, nil
}

func (e *LayoutEndpoint) Store(ctx context.Context, state []byte, objects map[string][]byte) error {
	if err := e.load(ctx); err != nil {
		return err
	}

	img := e.img
	if img == nil {
		img = mutate.MediaType(empty.Image, types.OCIManifestSchema1)
		img = mutate.ConfigMediaType(img, types.OCIConfigJSON)
	}

	layers, err := buildLayers(objects)
	if err != nil {
		return err
	}
	if len(layers) > 0 {
		img, err = mutate.AppendLayers(img, layers...)
		if err != nil {
			return fmt.Errorf("append layers: %w", err)
		}
	}

	cfg, err := img.ConfigFile()
	if err != nil {
		return fmt.Errorf("get config: %w", err)
	}
	cfg = cfg.DeepCopy()
	if cfg.Config.Labels == nil {
		cfg.Config.Labels = make(map[string]string)
	}
	cfg.Config.Labels[labelState] = string(state)

	img, err = mutate.ConfigFile(img, cfg)
	if err != nil {
		return fmt.Errorf("set config: %w", err)
	}

	p, err := e.openOrCreate()
	if err != nil {
		return err
	}
	err = p.ReplaceImage(img, match.Name(layoutRefName),
		layout.WithAnnotations(map[string]string{annotationRefName: layoutRefName}))
	if err != nil {
		return fmt.Errorf("write image: %w", err)
	}

	e.img = img
	e.state = state
	for h, data := range objects {
		e.objects[h] = data
	}
	return nil
}

func (e *LayoutEndpoint) openOrCreate() (layout.Path, error) {
	p, err := layout.FromPath(e.path)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("open layout %s: %w", e.path, err)
	}
	if err := os.MkdirAll(e.path, 0755); err != nil {
		return "", fmt.Errorf("create layout dir: %w", err)
	}
	p, err = layout.Write(e.path, empty.Index)
	if err != nil {
		return "", fmt.Errorf("init layout %s: %w", e.path, err)
	}
	return p, nil
}

func (e *LayoutEndpoint) load(ctx context.Context) error {
	if e.loaded {
		return nil
	}

	p, err := layout.FromPath(e.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			e.loaded = true
			return nil
		}
		return fmt.Errorf("open layout %s: %w", e.path, err)
	}

	img, err := findImage(p)
	if err != nil {
		return err
	}
	if img == nil {
		e.loaded = true
		return nil
	}

	cfg, err := img.ConfigFile()
	if err != nil {
		return fmt.Errorf("get config: %w", err)
	}
	state, ok := cfg.Config.Labels[labelState]
	if !ok {
		return fmt.Errorf("missing %s label in %s", labelState, e)
	}

	layers, err := img.Layers()
	if err != nil {
		return fmt.Errorf("get layers: %w", err)
	}

	var mu sync.Mutex
	objects := make(map[string][]byte)

	wp := pool.New().WithMaxGoroutines(e.concurrency).WithContext(ctx).WithCancelOnError()
	for _, layer := range layers {
		wp.Go(func(ctx context.Context) error {
			rc, err := layer.Uncompressed()
			if err != nil {
				return fmt.Errorf("read layer: %w", err)
			}
			data, err := io.ReadAll(rc)
			if cerr := rc.Close(); cerr != nil {
				return fmt.Errorf("close layer: %w", cerr)
			}
			if err != nil {
				return fmt.Errorf("read layer: %w", err)
			}

			blobs, err := UnpackLayer(data)
			if err != nil {
				return fmt.Errorf("unpack layer: %w", err)
			}

			mu.Lock()
			for k, v := range blobs {
				objects[k] = v
			}
			mu.Unlock()
			return nil
		})
	}
	if err := wp.Wait(); err != nil {
		return err
	}

	e.img = img
	e.state = []byte(state)
	e.objects = objects
	e.loaded = true
	return nil
}

func findImage(p layout.Path) (v1.Image, error) {
	ii, err := p.ImageIndex()
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}
	im, err := ii.IndexManifest()
	if err != nil {
		return nil, fmt.Errorf("read index manifest: %w", err)
	}
	for _, desc := range im.Manifests {
		if desc.Annotations[annotationRefName] != layoutRefName {
			continue
		}
		img, err := ii.Image(desc.Digest)
		if err != nil {
			return nil, fmt.Errorf("read image %s: %w", desc.Digest, err)
		}
		return img, nil
	}
	return nil, nil
}

func buildLayers(objects map[string][]byte) ([]v1.Layer, error) {
	if len(objects) == 0 {
		return nil, nil
	}
	byPrefix := GroupByPrefix(objects)
	plan := BuildLayerPlan(CalculatePrefixSizes(byPrefix))

	layers := make([]v1.Layer, 0, len(plan))
	for _, group := range plan {
		data, err := PackLayer(CollectPrefixBlobs(group, byPrefix))
		if err != nil {
			return nil, err
		}
		layers = append(layers, newBlobLayer(data))
	}
	return layers, nil
}

// blobLayer implements v1.Layer with zstd compression
type blobLayer struct {
	compressed   []byte
	uncompressed []byte
}

var zstdEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))

func newBlobLayer(data []byte) *blobLayer {
	return &blobLayer{
		compressed:   zstdEncoder.EncodeAll(data, nil),
		uncompressed: data,
	}
}

func (l *blobLayer) Digest() (v1.Hash, error) {
	h, _, err := v1.SHA256(bytes.NewReader(l.compressed))
	return h, err
}

func (l *blobLayer) DiffID() (v1.Hash, error) {
	h, _, err := v1.SHA256(bytes.NewReader(l.uncompressed))
	return h, err
}

func (l *blobLayer) Compressed() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(l.compressed)), nil
}
func (l *blobLayer) Uncompressed() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(l.uncompressed)), nil
}
func (l *blobLayer) Size() (int64, error)                { return int64(len(l.compressed)), nil }
func (l *blobLayer) MediaType() (types.MediaType, error) { return types.OCILayerZStd, nil }
