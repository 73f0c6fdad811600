// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package validations

import (
	"fmt"
	"strings"

	"carvel.dev/yamlls/pkg/jsonschema"
	"carvel.dev/yamlls/pkg/yamlast"
)

// seenProperty is one key of an object after merge keys and compile-time
// expressions have been flattened in.
type seenProperty struct {
	key     string
	keyNode *yamlast.String
	value   yamlast.Node
}

type seenProperties struct {
	items []seenProperty
	index map[string]int
}

func (s *seenProperties) add(prop *yamlast.Property) {
	if s.index == nil {
		s.index = map[string]int{}
	}
	entry := seenProperty{prop.KeyValue(), prop.Key, prop.Value}
	if i, found := s.index[entry.key]; found {
		// later duplicates win
		s.items[i] = entry
		return
	}
	s.index[entry.key] = len(s.items)
	s.items = append(s.items, entry)
}

func (s *seenProperties) get(key string) (seenProperty, bool) {
	i, found := s.index[key]
	if !found {
		return seenProperty{}, false
	}
	return s.items[i], true
}

// matching returns the keys that satisfy a schema property, taking its
// aliases and key case rules into account.
func (s *seenProperties) matching(name string, propSchema *jsonschema.Schema) []seenProperty {
	names := []string{name}
	if propSchema != nil {
		names = append(names, propSchema.Aliases...)
	}
	ignoreCase := propSchema.IgnoresKeyCase()

	var result []seenProperty
	for _, item := range s.items {
		for _, candidate := range names {
			if stringsMatch(item.key, candidate, ignoreCase) {
				result = append(result, item)
				break
			}
		}
	}
	return result
}

func (v validator) object(obj *yamlast.Object, schema *jsonschema.Schema, result *ValidationResult, collector SchemaCollector) {
	seen := v.collectSeen(obj, schema, result, collector)

	hasProperty := func(name string) bool {
		if _, found := seen.get(name); found {
			return true
		}
		return len(seen.matching(name, schema.Property(name))) > 0
	}

	for _, name := range schema.Required {
		if hasProperty(name) {
			continue
		}
		start, end := obj.Start(), obj.Start()+1
		if owner := yamlast.ParentProperty(obj); owner != nil {
			start, end = owner.Key.Start(), owner.Key.End()
		}
		result.add(v.problem(start, end, SeverityWarning, fmt.Sprintf("Missing property \"%s\".", name)))
	}

	processed := map[string]bool{}
	child := v.child()

	for _, name := range schema.PropertyNames() {
		propSchema := schema.Property(name)
		matches := seen.matching(name, propSchema)
		processed[name] = true

		if len(matches) > 1 {
			for _, match := range matches {
				processed[match.key] = true
				result.add(v.nodeProblem(match.keyNode, SeverityError, fmt.Sprintf("Multiple properties found matching %s", name)))
			}
			continue
		}
		if len(matches) == 1 {
			processed[matches[0].key] = true
			if matches[0].value != nil {
				propResult := NewValidationResult()
				child.validate(matches[0].value, propSchema, propResult, collector)
				result.MergePropertyMatch(propResult)
			}
		}
	}

	schema.EachPatternProperty(func(pattern string, propSchema *jsonschema.Schema) {
		for _, item := range seen.items {
			if processed[item.key] {
				continue
			}
			matched, ok := jsonschema.MatchPattern(pattern, propSchema.IgnoresKeyCase(), item.key)
			if !ok || !matched {
				continue
			}
			processed[item.key] = true
			if item.value != nil {
				propResult := NewValidationResult()
				child.validate(item.value, propSchema, propResult, collector)
				result.MergePropertyMatch(propResult)
			}
		}
	})

	if additional := schema.AdditionalProperties; additional != nil {
		for _, item := range seen.items {
			if processed[item.key] {
				continue
			}
			switch {
			case additional.Schema != nil:
				if item.value != nil {
					propResult := NewValidationResult()
					child.validate(item.value, additional.Schema, propResult, collector)
					result.MergePropertyMatch(propResult)
				}
			case additional.IsFalse():
				msg := schema.ErrorMessage
				if msg == "" {
					msg = fmt.Sprintf("Unexpected property %s", item.key)
				}
				result.add(v.nodeProblem(item.keyNode, SeverityWarning, msg))
			}
		}
	}

	count := len(seen.items)
	if schema.MaxProperties != nil && count > *schema.MaxProperties {
		result.add(v.nodeProblem(obj, SeverityWarning, fmt.Sprintf("Object has more properties than limit of %d.", *schema.MaxProperties)))
	}
	if schema.MinProperties != nil && count < *schema.MinProperties {
		result.add(v.nodeProblem(obj, SeverityWarning, fmt.Sprintf("Object has fewer properties than the required number of %d", *schema.MinProperties)))
	}

	for _, dep := range schema.Dependencies {
		if !hasProperty(dep.Property) {
			continue
		}
		if dep.Schema != nil {
			depResult := NewValidationResult()
			v.validate(obj, dep.Schema, depResult, collector)
			result.MergePropertyMatch(depResult)
			continue
		}
		for _, required := range dep.Properties {
			if hasProperty(required) {
				result.PropertiesValueMatches++
				continue
			}
			result.add(v.nodeProblem(obj, SeverityWarning,
				fmt.Sprintf("Object is missing property %s required by property %s.", required, dep.Property)))
		}
	}

	if len(schema.FirstProperty) > 0 {
		if first := effectiveFirstProperty(obj); first != nil && !acceptsFirstProperty(schema, first.KeyValue()) {
			var msg string
			if len(schema.FirstProperty) == 1 {
				msg = fmt.Sprintf("The first property must be %s", schema.FirstProperty[0])
			} else {
				msg = fmt.Sprintf("The first property must be one of: %s", strings.Join(schema.FirstProperty, ", "))
			}
			result.add(v.nodeProblem(first, SeverityError, msg))
		}
	}
}

// collectSeen flattens merge keys and mapping-valued compile-time
// expressions into the object's own properties.
func (v validator) collectSeen(obj *yamlast.Object, schema *jsonschema.Schema, result *ValidationResult, collector SchemaCollector) *seenProperties {
	seen := &seenProperties{}
	v.flatten(obj, schema, seen, result, collector)
	return seen
}

func (v validator) flatten(obj *yamlast.Object, schema *jsonschema.Schema, seen *seenProperties, result *ValidationResult, collector SchemaCollector) {
	mergeKeys := 0
	var sequenceExpr *yamlast.Property

	for _, prop := range obj.Properties {
		switch {
		case prop.IsMergeKey():
			mergeKeys++
			if mergeKeys > 1 {
				result.add(v.nodeProblem(prop.Key, SeverityError, "Multiple merge keys are not allowed at the same level"))
			}
			switch merged := prop.Value.(type) {
			case *yamlast.Object:
				for _, mergedProp := range merged.Properties {
					seen.add(mergedProp)
				}
			case *yamlast.Array:
				for _, item := range merged.Items {
					if itemObj, ok := item.(*yamlast.Object); ok {
						for _, mergedProp := range itemObj.Properties {
							seen.add(mergedProp)
						}
					}
				}
			}

		case prop.IsCompileTimeExpression():
			if msg, failed := checkCompileTimeExpression(prop.KeyValue()); failed {
				result.add(v.nodeProblem(prop.Key, SeverityError, msg))
			}
			switch exprValue := prop.Value.(type) {
			case *yamlast.Object:
				if collector.Include(exprValue) {
					collector.Add(ApplicableSchema{Node: exprValue, Schema: schema})
				}
				v.flatten(exprValue, schema, seen, result, collector)
			case *yamlast.Array:
				// spliced into the enclosing array
				sequenceExpr = prop
			}

		default:
			seen.add(prop)
		}
	}

	if sequenceExpr != nil && len(obj.Properties) > 1 {
		result.add(v.nodeProblem(sequenceExpr.Key, SeverityError,
			"A compile-time expression producing a sequence must be the only key in its mapping"))
	}
}

// effectiveFirstProperty is the first property that is neither a merge key
// nor a compile-time expression.
func effectiveFirstProperty(obj *yamlast.Object) *yamlast.Property {
	for _, prop := range obj.Properties {
		if !prop.IsMergeKey() && !prop.IsCompileTimeExpression() {
			return prop
		}
	}
	return nil
}

// acceptsFirstProperty reports whether key, resolved through aliases and
// key case rules, is one of the schema's allowed first properties.
func acceptsFirstProperty(schema *jsonschema.Schema, key string) bool {
	for _, allowed := range schema.FirstProperty {
		propSchema := schema.Property(allowed)
		ignoreCase := propSchema.IgnoresKeyCase()
		if stringsMatch(allowed, key, ignoreCase) {
			return true
		}
		if propSchema != nil {
			for _, alias := range propSchema.Aliases {
				if stringsMatch(alias, key, ignoreCase) {
					return true
				}
			}
		}
	}
	return false
}
