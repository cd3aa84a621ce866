/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package session

import (
	"gocollector/internal/config"
	"gocollector/internal/domain"
	"gocollector/internal/filter"
)

// Card is one catalog item as shown in the active list.
type Card struct {
	domain.Item
	Checked bool `json:"checked"`
	Locked  bool `json:"locked,omitempty"`
}

// GroupView is a titled run of cards.
type GroupView struct {
	Key   string `json:"key"`
	Cards []Card `json:"cards"`
}

// CompanyOption is one specific-company choice of the selected company group.
type CompanyOption struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Selected bool   `json:"selected"`
}

// View is the browsable catalog for the active list.
type View struct {
	State     State           `json:"state"`
	Companies []CompanyOption `json:"companies,omitempty"`
	Groups    []GroupView     `json:"groups"`
	Notice    string          `json:"notice,omitempty"`
	Selected  int             `json:"selected"`
	Total     int             `json:"total"`
}

// View filters and groups the catalog and marks each card.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.state.List
	v := View{State: s.state, Total: s.catalog.Len(), Selected: s.store.Count(list)}
	for _, code := range filter.Companies(s.state.Criteria.CompanyGroup) {
		v.Companies = append(v.Companies, CompanyOption{
			Code:     code,
			Name:     filter.CompanyName(code),
			Selected: code == s.state.Criteria.CompanySpecific,
		})
	}
	if s.loadErr != "" {
		v.Notice = s.loadErr
		return v
	}

	items := filter.Filter(s.catalog.Items, s.state.Criteria)
	if list == domain.ListWished && s.opts.Policy == config.PolicyHide {
		kept := items[:0:0]
		for _, it := range items {
			if !s.store.Has(domain.ListOwned, it.ID) {
				kept = append(kept, it)
			}
		}
		items = kept
	}
	if len(items) == 0 {
		v.Notice = NoticeNoMatch
		return v
	}
	for _, g := range filter.GroupBy(items, s.state.Criteria) {
		gv := GroupView{Key: g.Key, Cards: make([]Card, 0, len(g.Items))}
		for _, it := range g.Items {
			gv.Cards = append(gv.Cards, Card{
				Item:    it,
				Checked: s.store.Has(list, it.ID),
				Locked:  s.shadowed(list, it.ID),
			})
		}
		v.Groups = append(v.Groups, gv)
	}
	return v
}
