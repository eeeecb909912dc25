package sender

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/MasterOfBinary/gonagle/nagle"
)

// FileConfig is the on-disk configuration of a collection and the sender
// draining it.
//
//	capacity: 1000
//	drainPolicy: drain
//	batch:
//	  maxBatchSize: 100
//	  maxWait: 50ms
//	  flushTimeout: 5s
//	  flushRate: 200
//	  flushBurst: 10
type FileConfig struct {
	// Capacity is the collection capacity.
	Capacity int `yaml:"capacity"`

	// DrainPolicy is "drain" or "reject".
	DrainPolicy nagle.DrainPolicy `yaml:"drainPolicy"`

	// Batch holds the sender values.
	Batch ConfigValues `yaml:"batch"`
}

// DefaultFileConfig returns the configuration used for fields missing from a file.
func DefaultFileConfig() FileConfig {
	return FileConfig{
		Capacity:    DefaultCapacity,
		DrainPolicy: nagle.DrainAfterClose,
		Batch: ConfigValues{
			MaxBatchSize: DefaultMaxBatchSize,
			MaxWait:      DefaultMaxWait,
		},
	}
}

// Validate checks that the configuration can be used to build a collection
// and sender.
func (c FileConfig) Validate() error {
	var errs []error
	if c.Capacity <= 0 {
		errs = append(errs, fmt.Errorf("capacity must be positive, is %d", c.Capacity))
	}
	if c.Batch.MaxBatchSize <= 0 {
		errs = append(errs, fmt.Errorf("batch.maxBatchSize must be positive, is %d", c.Batch.MaxBatchSize))
	}
	if c.Capacity > 0 && c.Batch.MaxBatchSize > c.Capacity {
		// TakeBatch could never see a full batch and would always time out.
		errs = append(errs, fmt.Errorf("batch.maxBatchSize (%d) cannot be greater than capacity (%d)",
			c.Batch.MaxBatchSize, c.Capacity))
	}
	if c.Batch.MaxWait <= 0 {
		errs = append(errs, fmt.Errorf("batch.maxWait must be positive, is %v", c.Batch.MaxWait))
	}
	if c.Batch.FlushTimeout < 0 {
		errs = append(errs, fmt.Errorf("batch.flushTimeout cannot be negative, is %v", c.Batch.FlushTimeout))
	}
	if c.Batch.FlushRate < 0 {
		errs = append(errs, fmt.Errorf("batch.flushRate cannot be negative, is %v", c.Batch.FlushRate))
	}
	if len(errs) > 0 {
		return fmt.Errorf("sender: invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// CollectionOptions returns the nagle options described by the file.
func (c FileConfig) CollectionOptions() []nagle.Option {
	return []nagle.Option{nagle.WithDrainPolicy(c.DrainPolicy)}
}

// LoadConfig decodes YAML from r on top of DefaultFileConfig and validates
// the result. Unknown keys are an error. If the file does not set
// batch.maxBatchSize, the default is lowered to the capacity when needed.
func LoadConfig(r io.Reader) (FileConfig, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return FileConfig{}, fmt.Errorf("sender: reading config: %w", err)
	}

	cfg := DefaultFileConfig()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return FileConfig{}, fmt.Errorf("sender: decoding config: %w", err)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return FileConfig{}, fmt.Errorf("sender: decoding config: %w", err)
	}
	if !hasKey(&root, "batch", "maxBatchSize") && cfg.Capacity > 0 && cfg.Batch.MaxBatchSize > cfg.Capacity {
		cfg.Batch.MaxBatchSize = cfg.Capacity
	}

	if err := cfg.Validate(); err != nil {
		return FileConfig{}, err
	}
	return cfg, nil
}

// hasKey reports whether the mapping path is present in the document.
func hasKey(n *yaml.Node, path ...string) bool {
	if n.Kind == yaml.DocumentNode {
		if len(n.Content) == 0 {
			return false
		}
		n = n.Content[0]
	}

	for _, key := range path {
		if n.Kind != yaml.MappingNode {
			return false
		}
		var next *yaml.Node
		for i := 0; i+1 < len(n.Content); i += 2 {
			if n.Content[i].Value == key {
				next = n.Content[i+1]
				break
			}
		}
		if next == nil {
			return false
		}
		n = next
	}
	return true
}

// LoadConfigFile reads the YAML configuration at path.
func LoadConfigFile(path string) (FileConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return FileConfig{}, fmt.Errorf("sender: %w", err)
	}
	defer f.Close()

	return LoadConfig(f)
}
