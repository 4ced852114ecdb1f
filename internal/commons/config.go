package commons

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

type promoFile struct {
	Codes map[string]int `yaml:"codes"`
}

// LoadPromoCodes reads a promo table of the form
//
//	codes:
//	  WELCOME10: 10
//	  SAVE15: 15
func LoadPromoCodes(path string) (map[string]int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading promo file: %w", err)
	}

	var pf promoFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("parsing promo file: %w", err)
	}
	if len(pf.Codes) == 0 {
		return nil, fmt.Errorf("promo file %s defines no codes", path)
	}

	return pf.Codes, nil
}
