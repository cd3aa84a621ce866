/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package filter

import (
	"errors"
	"reflect"
	"testing"

	"gocollector/internal/domain"
)

func sampleItems() []domain.Item {
	return []domain.Item{
		{ID: "1", Country: "kr", Character: "ngn", Company: "b-flat", Group: "Plush", SubGroup: "Mini"},
		{ID: "2", Country: "jp", Character: "ngn", Company: "Furyu", Group: "Plush"},
		{ID: "3", Country: "kr", Character: "bear", Company: "Daewon", Group: "Keyring"},
		{ID: "4", Country: "kr", Character: "ngn", Company: "Parade", Group: "", SubGroup: "Big"},
		{ID: "5", Country: "jp", Character: "bear", Company: "Furyu_new", Group: "Plush"},
	}
}

func ids(items []domain.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func TestFilter_AllAnyKeepsOrder(t *testing.T) {
	items := sampleItems()
	got := Filter(items, Reset())
	if !reflect.DeepEqual(ids(got), []string{"1", "2", "3", "4", "5"}) {
		t.Fatalf("all-any filter changed order: %v", ids(got))
	}
	if !reflect.DeepEqual(ids(Filter(items, Criteria{})), ids(got)) {
		t.Fatalf("empty criteria should behave like all-any")
	}
}

func TestFilter_Deterministic(t *testing.T) {
	c := Reset().WithCountry("kr")
	a := Filter(sampleItems(), c)
	b := Filter(sampleItems(), c)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("filter not deterministic")
	}
	if !reflect.DeepEqual(ids(a), []string{"1", "3", "4"}) {
		t.Fatalf("country filter wrong: %v", ids(a))
	}
}

func TestFilter_CharacterAndCountryAreANDed(t *testing.T) {
	c := Reset().WithCountry("jp").WithCharacter("bear")
	if got := ids(Filter(sampleItems(), c)); !reflect.DeepEqual(got, []string{"5"}) {
		t.Fatalf("AND semantics broken: %v", got)
	}
}

func TestFilter_CompanyGroups(t *testing.T) {
	c, err := Reset().WithCompanyGroup(GroupOld)
	if err != nil {
		t.Fatalf("WithCompanyGroup: %v", err)
	}
	if got := ids(Filter(sampleItems(), c)); !reflect.DeepEqual(got, []string{"1", "2"}) {
		t.Fatalf("old group wrong: %v", got)
	}
	c, _ = c.WithCompanyGroup(GroupNew)
	if got := ids(Filter(sampleItems(), c)); !reflect.DeepEqual(got, []string{"3", "4", "5"}) {
		t.Fatalf("new group wrong: %v", got)
	}
	c, err = c.WithCompanySpecific("Parade")
	if err != nil {
		t.Fatalf("WithCompanySpecific: %v", err)
	}
	if got := ids(Filter(sampleItems(), c)); !reflect.DeepEqual(got, []string{"4"}) {
		t.Fatalf("specific company wrong: %v", got)
	}
}

func TestCriteria_SpecificMustBelongToGroup(t *testing.T) {
	c, _ := Reset().WithCompanyGroup(GroupOld)
	if _, err := c.WithCompanySpecific("Parade"); !errors.Is(err, ErrCompanyNotInGroup) {
		t.Fatalf("expected ErrCompanyNotInGroup, got %v", err)
	}
	if _, err := Reset().WithCompanySpecific("Furyu"); !errors.Is(err, ErrCompanyNotInGroup) {
		t.Fatalf("specific without group must be rejected, got %v", err)
	}
}

func TestCriteria_SelectingGroupClearsSpecific(t *testing.T) {
	c, _ := Reset().WithCompanyGroup(GroupOld)
	c, _ = c.WithCompanySpecific("Anova")
	c, _ = c.WithCompanyGroup(GroupOld)
	if c.CompanySpecific != "" {
		t.Fatalf("re-selecting a group must clear specific company")
	}
}

func TestCriteria_SpecificToggles(t *testing.T) {
	c, _ := Reset().WithCompanyGroup(GroupNew)
	c, _ = c.WithCompanySpecific("Daewon")
	c, _ = c.WithCompanySpecific("Daewon")
	if c.CompanySpecific != "" {
		t.Fatalf("choosing the same company twice should clear it")
	}
}

func TestCriteria_UnknownGroup(t *testing.T) {
	if _, err := Reset().WithCompanyGroup("future"); err == nil {
		t.Fatalf("expected error for unknown group")
	}
}

func TestGroupBy_PrimaryGroupFirstEncounter(t *testing.T) {
	groups := GroupBy(sampleItems(), Reset())
	var keys []string
	for _, g := range groups {
		keys = append(keys, g.Key)
	}
	if !reflect.DeepEqual(keys, []string{"Plush", "Keyring", FallbackGroup}) {
		t.Fatalf("group order wrong: %v", keys)
	}
	if got := ids(groups[0].Items); !reflect.DeepEqual(got, []string{"1", "2", "5"}) {
		t.Fatalf("items inside group lost order: %v", got)
	}
}

func TestGroupBy_SubGroupedCharacter(t *testing.T) {
	c := Reset().WithCharacter(SubGroupedCharacter)
	groups := GroupBy(Filter(sampleItems(), c), c)
	var keys []string
	for _, g := range groups {
		keys = append(keys, g.Key)
	}
	// item 2 has no sub-group and falls back to its primary group
	if !reflect.DeepEqual(keys, []string{"Mini", "Plush", "Big"}) {
		t.Fatalf("sub-group keys wrong: %v", keys)
	}
}

func TestCompanyRegistry(t *testing.T) {
	if got := Companies(GroupNew); len(got) != 4 || got[0] != "Daewon" {
		t.Fatalf("Companies(new) = %v", got)
	}
	if CompanyName("Parade") != "퍼레이드" || CompanyName("unknown") != "unknown" {
		t.Fatalf("CompanyName mapping wrong")
	}
}
