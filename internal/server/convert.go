package server

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/alfredjeanlab/querydsl/internal/model"
)

// conditionFromQuery reads username, teamName, ageGoe and ageLoe. Absent or
// empty parameters impose no constraint.
func conditionFromQuery(q url.Values) (model.MemberSearchCondition, error) {
	cond := model.MemberSearchCondition{
		Username: q.Get("username"),
		TeamName: q.Get("teamName"),
	}
	var err error
	if cond.AgeGoe, err = optionalInt(q, "ageGoe"); err != nil {
		return cond, err
	}
	if cond.AgeLoe, err = optionalInt(q, "ageLoe"); err != nil {
		return cond, err
	}
	return cond, nil
}

// pageFromQuery reads page (zero-based), size and any number of
// sort=property[,asc|desc] parameters. Range checks are left to the search.
func pageFromQuery(q url.Values) (model.PageRequest, error) {
	page := model.PageRequest{Size: model.DefaultPageSize}
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return page, inputError("page must be an integer")
		}
		page.Index = n
	}
	if v := q.Get("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return page, inputError("size must be an integer")
		}
		page.Size = n
	}
	for _, v := range q["sort"] {
		o, err := model.ParseSortOrder(v)
		if err != nil {
			return page, inputError(err.Error())
		}
		page.Sort = append(page.Sort, o)
	}
	return page, nil
}

func optionalInt(q url.Values, key string) (*int, error) {
	v := q.Get(key)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, inputError(fmt.Sprintf("%s must be an integer", key))
	}
	return &n, nil
}

// pageBody is the wire form of a page, with the derived navigation fields.
type pageBody struct {
	Content       []*model.MemberTeam `json:"content"`
	TotalElements int64               `json:"total_elements"`
	TotalPages    int                 `json:"total_pages"`
	Page          int                 `json:"page"`
	Size          int                 `json:"size"`
	Last          bool                `json:"last"`
}

func pageToBody(p *model.Page[*model.MemberTeam]) pageBody {
	content := p.Content
	if content == nil {
		content = []*model.MemberTeam{}
	}
	return pageBody{
		Content:       content,
		TotalElements: p.TotalElements,
		TotalPages:    p.TotalPages(),
		Page:          p.PageIndex,
		Size:          p.PageSize,
		Last:          p.IsLast(),
	}
}

// toStruct converts a JSON-encodable value into a protobuf Struct. The value
// must encode as a JSON object.
func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}
	return out, nil
}

// fromStruct decodes a protobuf Struct into v using v's JSON tags. Fields
// missing from s keep the values v already holds.
func fromStruct(s *structpb.Struct, v any) error {
	data, err := protojson.Marshal(s)
	if err != nil {
		return inputError("invalid request: " + err.Error())
	}
	if err := json.Unmarshal(data, v); err != nil {
		return inputError("invalid request: " + err.Error())
	}
	return nil
}
