/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package session

import (
	"context"
	"fmt"

	"gocollector/internal/domain"
	"gocollector/internal/filter"
)

// CommandType names a UI action.
type CommandType string

const (
	CmdSwitchList         CommandType = "switch_list"
	CmdToggle             CommandType = "toggle"
	CmdSetCountry         CommandType = "set_country"
	CmdSetCharacter       CommandType = "set_character"
	CmdSetCompanyGroup    CommandType = "set_company_group"
	CmdSetCompanySpecific CommandType = "set_company_specific"
	CmdResetFilters       CommandType = "reset_filters"
	CmdClearList          CommandType = "clear_list"
	CmdUndo               CommandType = "undo"
	CmdRedo               CommandType = "redo"
	CmdExport             CommandType = "export"
)

// Command is one UI event. List defaults to the active list.
type Command struct {
	Type   CommandType           `json:"type"`
	List   string                `json:"list,omitempty"`
	ID     string                `json:"id,omitempty"`
	Value  string                `json:"value,omitempty"`
	Render *domain.RenderOptions `json:"render,omitempty"`
}

// Result reports the state after a command.
type Result struct {
	State   State   `json:"state"`
	Checked *bool   `json:"checked,omitempty"`
	Notice  string  `json:"notice,omitempty"`
	Export  *Export `json:"-"`
}

func (s *Session) listOf(cmd Command) (domain.ListKind, error) {
	if cmd.List == "" {
		return s.state.List, nil
	}
	return domain.ParseListKind(cmd.List)
}

// Dispatch applies cmd. Errors are also rendered into Result.Notice.
func (s *Session) Dispatch(ctx context.Context, cmd Command) (Result, error) {
	if cmd.Type == CmdExport {
		ro := domain.DefaultRenderOptions()
		if cmd.Render != nil {
			ro = *cmd.Render
		}
		exp, err := s.Export(ctx, ro)
		return Result{State: s.State(), Export: exp, Notice: Notice(err)}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.apply(ctx, cmd)
	res.State = s.state
	res.Notice = Notice(err)
	return res, err
}

func (s *Session) apply(ctx context.Context, cmd Command) (Result, error) {
	var res Result
	switch cmd.Type {
	case CmdSwitchList:
		v := cmd.Value
		if v == "" {
			v = cmd.List
		}
		list, err := domain.ParseListKind(v)
		if err != nil {
			return res, err
		}
		s.setList(list)
	case CmdToggle:
		list, err := s.listOf(cmd)
		if err != nil {
			return res, err
		}
		on, err := s.toggle(ctx, list, cmd.ID)
		if err != nil {
			return res, err
		}
		res.Checked = &on
	case CmdSetCountry:
		s.state.Criteria = s.state.Criteria.WithCountry(cmd.Value)
	case CmdSetCharacter:
		s.state.Criteria = s.state.Criteria.WithCharacter(cmd.Value)
	case CmdSetCompanyGroup:
		c, err := s.state.Criteria.WithCompanyGroup(cmd.Value)
		if err != nil {
			return res, err
		}
		s.state.Criteria = c
	case CmdSetCompanySpecific:
		c, err := s.state.Criteria.WithCompanySpecific(cmd.Value)
		if err != nil {
			return res, err
		}
		s.state.Criteria = c
	case CmdResetFilters:
		s.state.Criteria = filter.Reset()
	case CmdClearList:
		list, err := s.listOf(cmd)
		if err != nil {
			return res, err
		}
		if err := s.clear(ctx, list); err != nil {
			return res, err
		}
	case CmdUndo, CmdRedo:
		list, err := s.listOf(cmd)
		if err != nil {
			return res, err
		}
		if err := s.step(ctx, list, cmd.Type == CmdRedo); err != nil {
			return res, err
		}
	default:
		return res, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Type)
	}
	return res, nil
}
