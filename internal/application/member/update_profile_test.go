package member

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/playchat/internal/domain/member"
)

func strPtr(s string) *string { return &s }

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("修改昵称", func(t *testing.T) {
		f := newFixture(t)
		m := f.seed(t, "owner@test.com", "before")
		uc := NewUpdateProfileUseCase(f.service, f.images, f.tx, f.publisher)

		err := uc.Execute(ctx, UpdateProfileCommand{
			MemberID: m.ID, RequesterEmail: "owner@test.com", Nickname: strPtr("after"),
		})
		require.NoError(t, err)

		got, _ := f.repo.FindByID(ctx, m.ID)
		assert.Equal(t, "after", got.Nickname)
		assert.Equal(t, defaultImageURL, got.ImageURL, "未提交头像时不修改头像")
		assert.Equal(t, 1, f.tx.calls)
		assert.Equal(t, []string{RoutingKeyProfileUpdated}, f.publisher.keys)
	})

	t.Run("上传新头像", func(t *testing.T) {
		f := newFixture(t)
		m := f.seed(t, "owner@test.com", "nick")
		uc := NewUpdateProfileUseCase(f.service, f.images, f.tx, f.publisher)

		err := uc.Execute(ctx, UpdateProfileCommand{
			MemberID: m.ID, RequesterEmail: "owner@test.com", ProfileImage: pngUpload("PNG-new"),
		})
		require.NoError(t, err)

		got, _ := f.repo.FindByID(ctx, m.ID)
		assert.Equal(t, "nick", got.Nickname)
		assert.True(t, strings.HasPrefix(got.ImageURL, "http://localhost:8080/api/members/profile-image/"))
		assert.Equal(t, 1, f.store.count())
	})

	t.Run("空头像恢复默认", func(t *testing.T) {
		f := newFixture(t)
		m := f.seed(t, "owner@test.com", "nick")
		m.UpdateImageURL("http://localhost:8080/api/members/profile-image/old.png")
		require.NoError(t, f.repo.Update(ctx, m))
		uc := NewUpdateProfileUseCase(f.service, f.images, f.tx, f.publisher)

		err := uc.Execute(ctx, UpdateProfileCommand{
			MemberID: m.ID, RequesterEmail: "owner@test.com",
			ProfileImage: &member.Upload{Content: strings.NewReader("")},
		})
		require.NoError(t, err)

		got, _ := f.repo.FindByID(ctx, m.ID)
		assert.Equal(t, defaultImageURL, got.ImageURL)
	})

	t.Run("没有可修改内容", func(t *testing.T) {
		f := newFixture(t)
		uc := NewUpdateProfileUseCase(f.service, f.images, f.tx, f.publisher)

		err := uc.Execute(ctx, UpdateProfileCommand{MemberID: 99, RequesterEmail: "owner@test.com"})
		assert.ErrorIs(t, err, member.ErrNothingToUpdate, "优先于会员不存在")
		assert.Zero(t, f.tx.calls)
	})

	t.Run("会员不存在", func(t *testing.T) {
		f := newFixture(t)
		uc := NewUpdateProfileUseCase(f.service, f.images, f.tx, f.publisher)

		err := uc.Execute(ctx, UpdateProfileCommand{
			MemberID: 99, RequesterEmail: "other@test.com", Nickname: strPtr("x"),
		})
		assert.ErrorIs(t, err, member.ErrMemberNotFound)
	})

	t.Run("不是本人", func(t *testing.T) {
		f := newFixture(t)
		m := f.seed(t, "owner@test.com", "nick")
		uc := NewUpdateProfileUseCase(f.service, f.images, f.tx, f.publisher)

		err := uc.Execute(ctx, UpdateProfileCommand{
			MemberID: m.ID, RequesterEmail: "intruder@test.com",
			Nickname: strPtr("hacked"), ProfileImage: pngUpload("PNG-x"),
		})
		assert.ErrorIs(t, err, member.ErrForbidden)

		got, _ := f.repo.FindByID(ctx, m.ID)
		assert.Equal(t, "nick", got.Nickname)
		assert.Zero(t, f.store.count(), "鉴权失败时不保存头像")
		assert.Empty(t, f.publisher.keys)
	})

	t.Run("保存失败时删除新头像", func(t *testing.T) {
		f := newFixture(t)
		m := f.seed(t, "owner@test.com", "nick")
		f.repo.updateErr = errors.New("db down")
		uc := NewUpdateProfileUseCase(f.service, f.images, f.tx, f.publisher)

		err := uc.Execute(ctx, UpdateProfileCommand{
			MemberID: m.ID, RequesterEmail: "owner@test.com", ProfileImage: pngUpload("PNG-x"),
		})
		assert.EqualError(t, err, "db down")
		assert.Zero(t, f.store.count())
		assert.Empty(t, f.publisher.keys)
	})
}
