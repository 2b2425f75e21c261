package api

import (
	"context"

	"github.com/phrazzld/agora-api/internal/api/shared"
	"github.com/phrazzld/agora-api/internal/apperr"
	"github.com/phrazzld/agora-api/internal/i18n"
	"github.com/phrazzld/agora-api/internal/service"
	"github.com/vektah/gqlparser/v2/ast"
)

// execution is the state of one request: the resolved context, the version
// profile and the projector built from them.
type execution struct {
	h       *Handler
	rc      shared.RequestContext
	profile versionProfile
	proj    projector
}

type resolveFunc func(ctx context.Context, x *execution, f *selection) (any, error)

var resolvers = map[ast.Operation]map[string]resolveFunc{
	ast.Query: {
		"apiInfo":        resolveAPIInfo,
		"users":          resolveUsers,
		"user":           resolveUser,
		"searchUsers":    resolveSearchUsers,
		"posts":          resolvePosts,
		"post":           resolvePost,
		"postsByUser":    resolvePostsByUser,
		"postsByTag":     resolvePostsByTag,
		"searchPosts":    resolveSearchPosts,
		"commentsByPost": resolveCommentsByPost,
		"commentsByUser": resolveCommentsByUser,
		"tags":           resolveTags,
	},
	ast.Mutation: {
		"createUser":    resolveCreateUser,
		"updateUser":    resolveUpdateUser,
		"deleteUser":    resolveDeleteUser,
		"createPost":    resolveCreatePost,
		"updatePost":    resolveUpdatePost,
		"deletePost":    resolveDeletePost,
		"createComment": resolveCreateComment,
		"deleteComment": resolveDeleteComment,
		"login":         resolveLogin,
	},
}

// args decodes the arguments of f into out.
func (x *execution) args(ctx context.Context, f *selection, out any) error {
	if err := decodeArgs(f.args, out); err != nil {
		loc := i18n.FromContext(ctx)
		return apperr.Wrap(apperr.InvalidParameters,
			x.h.catalog.T(loc, i18n.MsgInvalidArguments, f.name),
			err, apperr.Details{"field": f.name})
	}
	return nil
}

// postIncludes reports whether the post owner is selected, directly on f or
// under its data field for pages.
func postIncludes(f *selection) service.PostIncludes {
	inc := service.PostIncludes{Owner: f.selects("owner")}
	for _, d := range f.fields {
		if d.name == "data" && d.selects("owner") {
			inc.Owner = true
		}
	}
	return inc
}

func (x *execution) commentIncludes(f *selection) service.CommentIncludes {
	inc := service.CommentIncludes{Owner: f.selects("owner"), Post: f.selects("post")}
	for _, d := range f.fields {
		if d.name != "data" {
			continue
		}
		inc.Owner = inc.Owner || d.selects("owner")
		inc.Post = inc.Post || d.selects("post")
	}
	if !x.profile.commentPostObject {
		inc.Post = false
	}
	return inc
}

func resolveAPIInfo(_ context.Context, x *execution, f *selection) (any, error) {
	return x.proj.apiInfo(x.rc, f), nil
}

func resolveUsers(ctx context.Context, x *execution, f *selection) (any, error) {
	var a usersArgs
	if err := x.args(ctx, f, &a); err != nil {
		return nil, err
	}
	res, err := x.h.users.ListUsers(ctx, a.ListParams, a.Filter)
	if err != nil {
		return nil, err
	}
	return projectPage(x.proj, res, f, typeUsersResponse, x.proj.listedUser), nil
}

func resolveUser(ctx context.Context, x *execution, f *selection) (any, error) {
	var a idArgs
	if err := x.args(ctx, f, &a); err != nil {
		return nil, err
	}
	u, err := x.h.users.GetUser(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	return x.proj.fullUser(u, f), nil
}

func resolveSearchUsers(ctx context.Context, x *execution, f *selection) (any, error) {
	var a searchArgs
	if err := x.args(ctx, f, &a); err != nil {
		return nil, err
	}
	res, err := x.h.users.SearchUsers(ctx, a.Query, a.ListParams)
	if err != nil {
		return nil, err
	}
	return projectPage(x.proj, res, f, typeUsersResponse, x.proj.listedUser), nil
}

func resolvePosts(ctx context.Context, x *execution, f *selection) (any, error) {
	var a postsArgs
	if err := x.args(ctx, f, &a); err != nil {
		return nil, err
	}
	res, err := x.h.posts.ListPosts(ctx, a.ListParams, a.Filter, postIncludes(f))
	if err != nil {
		return nil, err
	}
	return projectPage(x.proj, res, f, typePostsResponse, x.proj.post), nil
}

func resolvePost(ctx context.Context, x *execution, f *selection) (any, error) {
	var a idArgs
	if err := x.args(ctx, f, &a); err != nil {
		return nil, err
	}
	p, err := x.h.posts.GetPost(ctx, a.ID, postIncludes(f))
	if err != nil {
		return nil, err
	}
	return x.proj.post(p, f), nil
}

func resolvePostsByUser(ctx context.Context, x *execution, f *selection) (any, error) {
	var a postsByUserArgs
	if err := x.args(ctx, f, &a); err != nil {
		return nil, err
	}
	res, err := x.h.posts.PostsByUser(ctx, a.UserID, a.ListParams, postIncludes(f))
	if err != nil {
		return nil, err
	}
	return projectPage(x.proj, res, f, typePostsResponse, x.proj.post), nil
}

func resolvePostsByTag(ctx context.Context, x *execution, f *selection) (any, error) {
	var a postsByTagArgs
	if err := x.args(ctx, f, &a); err != nil {
		return nil, err
	}
	res, err := x.h.posts.PostsByTag(ctx, a.Tag, a.ListParams, postIncludes(f))
	if err != nil {
		return nil, err
	}
	return projectPage(x.proj, res, f, typePostsResponse, x.proj.post), nil
}

func resolveSearchPosts(ctx context.Context, x *execution, f *selection) (any, error) {
	var a searchArgs
	if err := x.args(ctx, f, &a); err != nil {
		return nil, err
	}
	res, err := x.h.posts.SearchPosts(ctx, a.Query, a.ListParams, postIncludes(f))
	if err != nil {
		return nil, err
	}
	return projectPage(x.proj, res, f, typePostsResponse, x.proj.post), nil
}

func resolveCommentsByPost(ctx context.Context, x *execution, f *selection) (any, error) {
	var a commentsByPostArgs
	if err := x.args(ctx, f, &a); err != nil {
		return nil, err
	}
	res, err := x.h.comments.CommentsByPost(ctx, a.PostID, a.ListParams, a.Filter, x.commentIncludes(f))
	if err != nil {
		return nil, err
	}
	return projectPage(x.proj, res, f, typeCommentsResponse, x.proj.comment), nil
}

func resolveCommentsByUser(ctx context.Context, x *execution, f *selection) (any, error) {
	var a commentsByUserArgs
	if err := x.args(ctx, f, &a); err != nil {
		return nil, err
	}
	res, err := x.h.comments.CommentsByUser(ctx, a.UserID, a.ListParams, a.Filter, x.commentIncludes(f))
	if err != nil {
		return nil, err
	}
	return projectPage(x.proj, res, f, typeCommentsResponse, x.proj.comment), nil
}

func resolveTags(ctx context.Context, x *execution, _ *selection) (any, error) {
	tags, err := x.h.posts.Tags(ctx)
	if err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []string{}
	}
	return tags, nil
}

func resolveCreateUser(ctx context.Context, x *execution, f *selection) (any, error) {
	var a createUserArgs
	if err := x.args(ctx, f, &a); err != nil {
		return nil, err
	}
	u, err := x.h.users.CreateUser(ctx, a.Input)
	if err != nil {
		return nil, err
	}
	return x.proj.fullUser(u, f), nil
}

func resolveUpdateUser(ctx context.Context, x *execution, f *selection) (any, error) {
	var a updateUserArgs
	if err := x.args(ctx, f, &a); err != nil {
		return nil, err
	}
	u, err := x.h.users.UpdateUser(ctx, a.ID, a.Input)
	if err != nil {
		return nil, err
	}
	return x.proj.fullUser(u, f), nil
}

func resolveDeleteUser(ctx context.Context, x *execution, f *selection) (any, error) {
	var a idArgs
	if err := x.args(ctx, f, &a); err != nil {
		return nil, err
	}
	return x.h.users.DeleteUser(ctx, a.ID)
}

func resolveCreatePost(ctx context.Context, x *execution, f *selection) (any, error) {
	var a createPostArgs
	if err := x.args(ctx, f, &a); err != nil {
		return nil, err
	}
	p, err := x.h.posts.CreatePost(ctx, a.Input, postIncludes(f))
	if err != nil {
		return nil, err
	}
	return x.proj.post(p, f), nil
}

func resolveUpdatePost(ctx context.Context, x *execution, f *selection) (any, error) {
	var a updatePostArgs
	if err := x.args(ctx, f, &a); err != nil {
		return nil, err
	}
	p, err := x.h.posts.UpdatePost(ctx, a.ID, a.Input, postIncludes(f))
	if err != nil {
		return nil, err
	}
	return x.proj.post(p, f), nil
}

func resolveDeletePost(ctx context.Context, x *execution, f *selection) (any, error) {
	var a idArgs
	if err := x.args(ctx, f, &a); err != nil {
		return nil, err
	}
	return x.h.posts.DeletePost(ctx, a.ID)
}

func resolveCreateComment(ctx context.Context, x *execution, f *selection) (any, error) {
	var a createCommentArgs
	if err := x.args(ctx, f, &a); err != nil {
		return nil, err
	}
	c, err := x.h.comments.CreateComment(ctx, a.Input, x.commentIncludes(f))
	if err != nil {
		return nil, err
	}
	return x.proj.comment(c, f), nil
}

func resolveDeleteComment(ctx context.Context, x *execution, f *selection) (any, error) {
	var a idArgs
	if err := x.args(ctx, f, &a); err != nil {
		return nil, err
	}
	return x.h.comments.DeleteComment(ctx, a.ID)
}

func resolveLogin(ctx context.Context, x *execution, f *selection) (any, error) {
	var a loginArgs
	if err := x.args(ctx, f, &a); err != nil {
		return nil, err
	}
	res, err := x.h.users.Login(ctx, a.Email, a.Password)
	if err != nil {
		return nil, err
	}
	return x.proj.login(res.Token, res.User, f), nil
}
