package remote

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"sort"

	"github.com/aweris/twig/internal/digest"
)

const (
	LayerMinSize = 2 * 1024 * 1024  // 2MB minimum before combining
	LayerSoftMax = 10 * 1024 * 1024 // 10MB soft maximum
)

// GroupByPrefix buckets objects by the first two characters of their address.
func GroupByPrefix(objects map[string][]byte) map[string]map[string][]byte {
	result := make(map[string]map[string][]byte)
	for hash, data := range objects {
		prefix := extractPrefix(hash)
		if result[prefix] == nil {
			result[prefix] = make(map[string][]byte)
		}
		result[prefix][hash] = data
	}
	return result
}

func extractPrefix(hash string) string {
	if len(hash) >= 2 {
		return hash[:2]
	}
	return "00"
}

func PrefixSize(blobs map[string][]byte) int64 {
	var total int64
	for _, data := range blobs {
		total += int64(len(data))
	}
	return total
}

// PackLayer packs blobs into binary format: [address 40B][length 8B][data]...
func PackLayer(blobs map[string][]byte) ([]byte, error) {
	hashes := make([]string, 0, len(blobs))
	for h := range blobs {
		if len(h) != digest.Len {
			return nil, fmt.Errorf("pack %q: address must be %d bytes", h, digest.Len)
		}
		hashes = append(hashes, h)
	}
	sort.Strings(hashes)

	var buf bytes.Buffer
	lenBuf := make([]byte, 8)

	for _, hash := range hashes {
		data := blobs[hash]
		buf.WriteString(hash)
		binary.BigEndian.PutUint64(lenBuf, uint64(len(data)))
		buf.Write(lenBuf)
		buf.Write(data)
	}
	return buf.Bytes(), nil
}

func UnpackLayer(data []byte) (map[string][]byte, error) {
	result := make(map[string][]byte)
	buf := bytes.NewReader(data)
	hashBuf := make([]byte, digest.Len)

	for buf.Len() > 0 {
		if _, err := io.ReadFull(buf, hashBuf); err != nil {
			return nil, fmt.Errorf("read address: %w", err)
		}

		var length uint64
		if err := binary.Read(buf, binary.BigEndian, &length); err != nil {
			return nil, fmt.Errorf("read length: %w", err)
		}
		if length > uint64(buf.Len()) {
			return nil, fmt.Errorf("object %s: length %d exceeds layer", hashBuf, length)
		}

		blob := make([]byte, length)
		if _, err := io.ReadFull(buf, blob); err != nil {
			return nil, fmt.Errorf("read data: %w", err)
		}

		result[string(hashBuf)] = blob
	}

	return result, nil
}

// BuildLayerPlan groups sorted prefixes into layers of roughly
// LayerSoftMax bytes, letting undersized layers grow up to twice that.
func BuildLayerPlan(prefixSizes map[string]int64) [][]string {
	prefixes := make([]string, 0, len(prefixSizes))
	for p := range prefixSizes {
		prefixes = append(prefixes, p)
	}
	sort.Strings(prefixes)

	var layers [][]string
	var current []string
	var size int64

	for _, prefix := range prefixes {
		prefixSize := prefixSizes[prefix]

		if len(current) == 0 {
			current = append(current, prefix)
			size = prefixSize
			continue
		}

		newSize := size + prefixSize
		if newSize <= LayerSoftMax {
			current = append(current, prefix)
			size = newSize
		} else if size < LayerMinSize && newSize <= 2*LayerSoftMax {
			current = append(current, prefix)
			size = newSize
		} else {
			layers = append(layers, current)
			current = []string{prefix}
			size = prefixSize
		}
	}

	if len(current) > 0 {
		layers = append(layers, current)
	}

	return layers
}

func CollectPrefixBlobs(prefixes []string, byPrefix map[string]map[string][]byte) map[string][]byte {
	result := make(map[string][]byte)
	for _, prefix := range prefixes {
		for hash, data := range byPrefix[prefix] {
			result[hash] = data
		}
	}
	return result
}

func CalculatePrefixSizes(byPrefix map[string]map[string][]byte) map[string]int64 {
	result := make(map[string]int64)
	for prefix, blobs := range byPrefix {
		result[prefix] = PrefixSize(blobs)
	}
	return result
}
