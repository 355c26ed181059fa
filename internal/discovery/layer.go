package discovery

import (
	"path"
	"strings"

	"github.com/ludo-technologies/ktscan/domain"
)

// layerRule maps directory names to a layer
type layerRule struct {
	layer    domain.Layer
	segments map[string]struct{}
}

func newLayerRule(layer domain.Layer, segments ...string) layerRule {
	set := make(map[string]struct{}, len(segments))
	for _, s := range segments {
		set[s] = struct{}{}
	}
	return layerRule{layer: layer, segments: set}
}

// layerRules are checked in order; the first rule with a matching
// directory segment wins.
var layerRules = []layerRule{
	newLayerRule(domain.LayerData, "data", "repository", "repositories", "datasource", "database", "db", "dao"),
	newLayerRule(domain.LayerDomain, "domain", "usecase", "usecases"),
	newLayerRule(domain.LayerUI, "ui", "presentation", "screen", "screens", "view", "views", "viewmodel"),
	newLayerRule(domain.LayerDI, "di", "injection"),
	newLayerRule(domain.LayerTest, "test", "tests", "androidtest", "testfixtures", "sharedtest"),
}

// ClassifyLayer derives the layer from the directory segments of a
// slash-separated relative path. Unmatched paths get LayerUnknown.
func ClassifyLayer(relPath string) domain.Layer {
	dir := path.Dir(relPath)
	if dir == "." || dir == "/" {
		return domain.LayerUnknown
	}
	segments := strings.Split(strings.ToLower(dir), "/")

	for _, rule := range layerRules {
		for _, seg := range segments {
			if _, ok := rule.segments[seg]; ok {
				return rule.layer
			}
		}
	}
	return domain.LayerUnknown
}
