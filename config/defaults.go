package config

import (
	"fmt"
	"reflect"

	"gopkg.in/yaml.v3"
)

func IsAllowedOverrideType(existing interface{}, v interface{}) bool {
	if v == nil {
		return false
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Map:
		return false
		// only override with array if it has a length
	case reflect.Array, reflect.Slice:
		return reflect.ValueOf(v).Len() > 0
	case reflect.Int, reflect.Bool, reflect.String:
		// enable overriding with "", 0, false
		// warning: config objects should always use "omitempty" or _all_ fields will get overwritten
		return true
	}
	//nolint
	if reflect.ValueOf(v).IsZero() {
		return false
	}
	return true
}

func IsMap(v interface{}) bool {
	return reflect.TypeOf(v).Kind() == reflect.Map
}

func RecursiveOverride(defaults map[string]interface{}, overrides map[string]interface{}) {
	for key, val := range overrides {
		existingVal, ok := defaults[key]
		if !ok {
			defaults[key] = val
			continue
		}
		if IsMap(existingVal) && IsMap(val) {
			switch existing := existingVal.(type) {
			case map[string]interface{}:
				RecursiveOverride(existing, val.(map[string]interface{}))
			default:
				panic(fmt.Sprintf("unknown map: %T", existingVal))
			}
		} else if IsAllowedOverrideType(existingVal, val) {
			defaults[key] = val
		}
	}
}

// ApplyDefaults merges overrideCfg on top of defaultCfg and writes the result into newCfg.
func ApplyDefaults(defaultCfg interface{}, overrideCfg interface{}, newCfg interface{}) error {
	bz, err := yaml.Marshal(defaultCfg)
	if err != nil {
		return err
	}
	defaults := map[string]interface{}{}
	if err = yaml.Unmarshal(bz, &defaults); err != nil {
		return err
	}

	bz, err = yaml.Marshal(overrideCfg)
	if err != nil {
		return err
	}
	overrides := map[string]interface{}{}
	if err = yaml.Unmarshal(bz, &overrides); err != nil {
		return err
	}
	RecursiveOverride(defaults, overrides)

	bz, err = yaml.Marshal(defaults)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(bz, newCfg)
}
