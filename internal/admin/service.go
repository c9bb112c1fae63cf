package admin

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/SlpAus/fame-list-backend/internal/platform/logger"
	"github.com/SlpAus/fame-list-backend/internal/platform/metrics"
	"github.com/SlpAus/fame-list-backend/internal/profile"
	"github.com/SlpAus/fame-list-backend/internal/upload"
)

// Store 是管理操作需要的远程写操作，由 profile.Repository 实现
type Store interface {
	CreateProfile(ctx context.Context, fields profile.Fields) (int64, error)
	UpdateProfile(ctx context.Context, id int64, fields profile.Fields) error
	DeleteProfile(ctx context.Context, id int64) error
}

// Reloader 在写操作成功后刷新列表快照，由 listing.Controller 实现
type Reloader interface {
	Load(ctx context.Context)
}

// Service 执行管理员的 创建 / 修改 / 删除。
// 所有输入校验都在任何网络调用之前完成；写操作成功后重新加载列表。
type Service struct {
	store    Store
	uploader upload.Uploader
	reloader Reloader
}

func NewService(store Store, uploader upload.Uploader, reloader Reloader) *Service {
	return &Service{store: store, uploader: uploader, reloader: reloader}
}

// prepare 校验字段；image 不为空时先上传图片并用返回的URL替换 PhotoURL
func (s *Service) prepare(ctx context.Context, fields profile.Fields, image string) (profile.Fields, error) {
	fields = fields.Normalize()
	if err := fields.Validate(); err != nil {
		return fields, err
	}
	if image == "" {
		return fields, nil
	}
	url, err := s.uploader.Upload(ctx, image)
	if err != nil {
		return fields, fmt.Errorf("上传图片失败: %w", err)
	}
	fields.PhotoURL = url
	return fields, nil
}

// Create 创建资料并返回新的id。图片上传成功而创建失败时，图片成为孤儿。
func (s *Service) Create(ctx context.Context, fields profile.Fields, image string) (id int64, err error) {
	defer func() { metrics.ObserveAdmin("create", err) }()

	fields, err = s.prepare(ctx, fields, image)
	if err != nil {
		return 0, err
	}
	id, err = s.store.CreateProfile(ctx, fields)
	if err != nil {
		return 0, fmt.Errorf("创建资料失败: %w", err)
	}
	logger.L().Info("资料已创建", zap.Int64("profile_id", id), zap.String("caste", string(fields.Caste)))
	s.reloader.Load(ctx)
	return id, nil
}

// Update 整体替换资料的可编辑字段
func (s *Service) Update(ctx context.Context, id int64, fields profile.Fields, image string) (err error) {
	defer func() { metrics.ObserveAdmin("update", err) }()

	fields, err = s.prepare(ctx, fields, image)
	if err != nil {
		return err
	}
	if err = s.store.UpdateProfile(ctx, id, fields); err != nil {
		return fmt.Errorf("修改资料 %d 失败: %w", id, err)
	}
	logger.L().Info("资料已修改", zap.Int64("profile_id", id))
	s.reloader.Load(ctx)
	return nil
}

func (s *Service) Delete(ctx context.Context, id int64) (err error) {
	defer func() { metrics.ObserveAdmin("delete", err) }()

	if err = s.store.DeleteProfile(ctx, id); err != nil {
		return fmt.Errorf("删除资料 %d 失败: %w", id, err)
	}
	logger.L().Info("资料已删除", zap.Int64("profile_id", id))
	s.reloader.Load(ctx)
	return nil
}
