package limits

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/teamarena/quotakit/pkg/quota"
)

// yamlSource reads a limit table from YAML of the form:
//
//	team:
//	  basic: 5
//	  pro: 25
//	  enterprise: 100
type yamlSource struct {
	content []byte
}

// NewYAMLSource reads the whole document from r. Parsing happens on Load.
func NewYAMLSource(r io.Reader) (Source, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadLimits, err)
	}
	return &yamlSource{content: content}, nil
}

// NewYAMLFileSource reads the limit table from a file on disk.
func NewYAMLFileSource(path string) (Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadLimits, err)
	}
	defer f.Close()
	return NewYAMLSource(f)
}

func (s *yamlSource) Load(ctx context.Context) (Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Join(ErrFailedToLoadLimits, err)
	}

	var raw map[string]map[string]int64
	if err := yaml.Unmarshal(s.content, &raw); err != nil {
		return nil, errors.Join(ErrFailedToParseLimits, err)
	}

	table := make(Table, len(raw))
	for name, tiers := range raw {
		rt := quota.ParseResourceType(name)
		if !rt.IsKnown() {
			return nil, errors.Join(ErrFailedToParseLimits, fmt.Errorf("unknown resource type %q", name))
		}
		row := make(TierLimits, len(tiers))
		for tierName, v := range tiers {
			tier, ok := quota.ParsePlanTier(tierName)
			if !ok {
				return nil, errors.Join(ErrFailedToParseLimits, fmt.Errorf("unknown plan tier %q for %s", tierName, name))
			}
			row[tier] = v
		}
		table[rt] = row
	}
	return table, nil
}
