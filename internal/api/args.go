package api

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/phrazzld/agora-api/internal/service"
)

// dateLayouts are the accepted textual forms of date arguments.
var dateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"}

// stringToTimeHook parses date arguments given as strings.
func stringToTimeHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf(time.Time{}) {
		return data, nil
	}
	s := strings.TrimSpace(reflect.ValueOf(data).String())
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return nil, fmt.Errorf("invalid date %q", s)
}

// decodeArgs copies evaluated field arguments into out, a pointer to one of
// the argument structs below. Embedded structs are squashed so ListParams
// fields sit next to the field's own arguments.
func decodeArgs(args map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:    "json",
		Squash:     true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(stringToTimeHook),
		Result:     out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(args)
}

type idArgs struct {
	ID string `json:"id"`
}

type usersArgs struct {
	service.ListParams
	Filter service.UserFilter `json:"filter"`
}

type searchArgs struct {
	service.ListParams
	Query string `json:"query"`
}

type postsArgs struct {
	service.ListParams
	Filter service.PostFilter `json:"filter"`
}

type postsByUserArgs struct {
	service.ListParams
	UserID string `json:"userId"`
}

type postsByTagArgs struct {
	service.ListParams
	Tag string `json:"tag"`
}

type commentsByPostArgs struct {
	service.ListParams
	PostID string                `json:"postId"`
	Filter service.CommentFilter `json:"filter"`
}

type commentsByUserArgs struct {
	service.ListParams
	UserID string                `json:"userId"`
	Filter service.CommentFilter `json:"filter"`
}

type createUserArgs struct {
	Input service.NewUserInput `json:"input"`
}

type updateUserArgs struct {
	ID    string             `json:"id"`
	Input service.UserUpdate `json:"input"`
}

type createPostArgs struct {
	Input service.NewPostInput `json:"input"`
}

type updatePostArgs struct {
	ID    string             `json:"id"`
	Input service.PostUpdate `json:"input"`
}

type createCommentArgs struct {
	Input service.NewCommentInput `json:"input"`
}

type loginArgs struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
