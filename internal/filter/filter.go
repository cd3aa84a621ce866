/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package filter narrows and groups the catalog for browsing and export.
// Everything here is pure: same inputs, same ordered output.
package filter

import (
	"errors"
	"fmt"
	"strings"

	"gocollector/internal/domain"
)

// Any is the criterion value that always passes. The empty string is treated the same way.
const Any = "all"

// SubGroupedCharacter is the character code whose items are grouped by sub-group.
const SubGroupedCharacter = "ngn"

// FallbackGroup labels items that declare no group.
const FallbackGroup = "Others"

// Company groups.
const (
	GroupOld = "old"
	GroupNew = "new"
)

// ErrCompanyNotInGroup rejects a specific company outside the selected group.
var ErrCompanyNotInGroup = errors.New("company does not belong to the selected group")

var companyGroups = map[string][]string{
	GroupOld: {"b-flat", "Anova", "Furyu"},
	GroupNew: {"Daewon", "Spiralcute", "Parade", "Furyu_new"},
}

var companyNames = map[string]string{
	"b-flat":     "비플랏",
	"Anova":      "지그노/에이노바",
	"Furyu":      "후류",
	"Daewon":     "대원미디어",
	"Spiralcute": "스파이럴큐트",
	"Parade":     "퍼레이드",
	"Furyu_new":  "후류",
}

// Companies returns the fixed company codes of a group in display order.
func Companies(group string) []string {
	return append([]string(nil), companyGroups[group]...)
}

// CompanyName returns the display name for a company code, or the code itself.
func CompanyName(code string) string {
	if n, ok := companyNames[code]; ok {
		return n
	}
	return code
}

func inGroup(group, company string) bool {
	for _, c := range companyGroups[group] {
		if c == company {
			return true
		}
	}
	return false
}

// Criteria is the set of independent predicates applied by Filter.
type Criteria struct {
	Country         string `json:"country"`
	Character       string `json:"character"`
	CompanyGroup    string `json:"companyGroup"`
	CompanySpecific string `json:"companySpecific,omitempty"`
}

// Reset returns criteria where every predicate passes.
func Reset() Criteria {
	return Criteria{Country: Any, Character: Any, CompanyGroup: Any}
}

func isAny(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || v == Any
}

// WithCountry sets the country predicate.
func (c Criteria) WithCountry(v string) Criteria {
	c.Country = strings.TrimSpace(v)
	return c
}

// WithCharacter sets the character predicate.
func (c Criteria) WithCharacter(v string) Criteria {
	c.Character = strings.TrimSpace(v)
	return c
}

// WithCompanyGroup selects a company group and always clears the specific company.
func (c Criteria) WithCompanyGroup(group string) (Criteria, error) {
	group = strings.TrimSpace(group)
	if !isAny(group) {
		if _, ok := companyGroups[group]; !ok {
			return c, fmt.Errorf("unknown company group %q", group)
		}
	}
	c.CompanyGroup = group
	c.CompanySpecific = ""
	return c, nil
}

// WithCompanySpecific narrows to one company of the current group. Choosing the
// already selected company clears it again.
func (c Criteria) WithCompanySpecific(code string) (Criteria, error) {
	code = strings.TrimSpace(code)
	if code == "" || code == c.CompanySpecific {
		c.CompanySpecific = ""
		return c, nil
	}
	if isAny(c.CompanyGroup) || !inGroup(c.CompanyGroup, code) {
		return c, fmt.Errorf("%w: %q in %q", ErrCompanyNotInGroup, code, c.CompanyGroup)
	}
	c.CompanySpecific = code
	return c, nil
}

// IsZero reports whether all predicates pass.
func (c Criteria) IsZero() bool {
	return isAny(c.Country) && isAny(c.Character) && isAny(c.CompanyGroup)
}

// Match evaluates all active predicates with logical AND.
func (c Criteria) Match(it domain.Item) bool {
	if !isAny(c.Country) && it.Country != c.Country {
		return false
	}
	if !isAny(c.Character) && it.Character != c.Character {
		return false
	}
	if !isAny(c.CompanyGroup) {
		// group membership is not re-checked once a specific company is chosen
		if c.CompanySpecific != "" {
			if it.Company != c.CompanySpecific {
				return false
			}
		} else if !inGroup(c.CompanyGroup, it.Company) {
			return false
		}
	}
	return true
}

// Filter returns the items matching c in input order. The input is not modified.
func Filter(items []domain.Item, c Criteria) []domain.Item {
	out := make([]domain.Item, 0, len(items))
	for _, it := range items {
		if c.Match(it) {
			out = append(out, it)
		}
	}
	return out
}

// Group is one heading of the grouped listing.
type Group struct {
	Key   string        `json:"key"`
	Items []domain.Item `json:"items"`
}

// GroupKey returns the heading an item is listed under for the given criteria.
func GroupKey(it domain.Item, c Criteria) string {
	if c.Character == SubGroupedCharacter && strings.TrimSpace(it.SubGroup) != "" {
		return it.SubGroup
	}
	if strings.TrimSpace(it.Group) != "" {
		return it.Group
	}
	return FallbackGroup
}

// GroupBy buckets items by GroupKey. Groups appear in first-encounter order and
// items keep their relative order.
func GroupBy(items []domain.Item, c Criteria) []Group {
	var groups []Group
	pos := make(map[string]int)
	for _, it := range items {
		k := GroupKey(it, c)
		i, ok := pos[k]
		if !ok {
			i = len(groups)
			pos[k] = i
			groups = append(groups, Group{Key: k})
		}
		groups[i].Items = append(groups[i].Items, it)
	}
	return groups
}
