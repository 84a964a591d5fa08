package export

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"

	"github.com/sells-group/cardintel-cli/internal/model"
)

// WriteResultsJSON writes research results as indented JSON at path.
func WriteResultsJSON(results []model.ResearchResult, path string) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return eris.Wrap(err, "export: marshal results")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "export: write %s", path)
	}
	return nil
}
