package jsonstore

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/prepwise-next/internal/models"
	"github.com/prepwise-next/internal/repository"
)

const (
	couponsFile = "coupons.json"
	usagesFile  = "coupon_usages.json"
)

// ErrDuplicateCode 优惠码已存在
var ErrDuplicateCode = errors.New("jsonstore: duplicate coupon code")

// Store 基于 JSON 文件的优惠券存储
// 进程内单写者，used_count 由使用记录推导，不单独落盘维护
type Store struct {
	mu      sync.RWMutex
	dir     string
	coupons []models.Coupon
	usages  []models.CouponUsage
	byCode  map[string]int
	byID    map[uint]int
	counts  map[uint]int
	nextID  uint
	nextUID uint
	now     func() time.Time
}

// Open 打开目录下的优惠券与使用记录文件
func Open(dir string) (*Store, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, fmt.Errorf("jsonstore: dir is required")
	}
	coupons, err := readJSONFile[models.Coupon](filepath.Join(dir, couponsFile))
	if err != nil {
		return nil, err
	}
	usages, err := readJSONFile[models.CouponUsage](filepath.Join(dir, usagesFile))
	if err != nil {
		return nil, err
	}
	s := &Store{
		dir:     dir,
		coupons: coupons,
		usages:  usages,
		now:     time.Now,
	}
	if err := s.reindex(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) reindex() error {
	s.byCode = make(map[string]int, len(s.coupons))
	s.byID = make(map[uint]int, len(s.coupons))
	s.counts = make(map[uint]int)
	s.nextID = 0
	s.nextUID = 0
	for i, c := range s.coupons {
		code := repository.NormalizeCouponCode(c.Code)
		if _, dup := s.byCode[code]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateCode, code)
		}
		s.coupons[i].Code = code
		s.byCode[code] = i
		s.byID[c.ID] = i
		if c.ID > s.nextID {
			s.nextID = c.ID
		}
	}
	for _, u := range s.usages {
		s.counts[u.CouponID]++
		if u.ID > s.nextUID {
			s.nextUID = u.ID
		}
		// 已删除优惠券的使用记录仍占用其 ID
		if u.CouponID > s.nextID {
			s.nextID = u.CouponID
		}
	}
	return nil
}

func (s *Store) persistCoupons(coupons []models.Coupon) error {
	return writeJSONFile(filepath.Join(s.dir, couponsFile), coupons)
}

func (s *Store) persistUsages(usages []models.CouponUsage) error {
	return writeJSONFile(filepath.Join(s.dir, usagesFile), usages)
}

// view 返回带推导使用次数的副本
func (s *Store) view(c models.Coupon) *models.Coupon {
	out := cloneCoupon(c)
	out.UsedCount = s.counts[c.ID]
	return &out
}

// GetByID 根据ID获取优惠券
func (s *Store) GetByID(id uint) (*models.Coupon, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	return s.view(s.coupons[idx]), nil
}

// GetByCode 根据优惠码获取优惠券，走内存索引
func (s *Store) GetByCode(code string) (*models.Coupon, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.byCode[repository.NormalizeCouponCode(code)]
	if !ok {
		return nil, nil
	}
	return s.view(s.coupons[idx]), nil
}

// CodeTaken 文件存储为硬删除，只需查内存索引
func (s *Store) CodeTaken(code string, excludeID uint) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.byCode[repository.NormalizeCouponCode(code)]
	if !ok {
		return false, nil
	}
	return s.coupons[idx].ID != excludeID, nil
}

// Create 创建优惠券
func (s *Store) Create(coupon *models.Coupon) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	code := repository.NormalizeCouponCode(coupon.Code)
	if _, exists := s.byCode[code]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateCode, code)
	}
	now := s.now()
	record := cloneCoupon(*coupon)
	record.ID = s.nextID + 1
	record.Code = code
	record.UsedCount = 0
	record.CreatedAt = now
	record.UpdatedAt = now

	next := append(append([]models.Coupon(nil), s.coupons...), record)
	if err := s.persistCoupons(next); err != nil {
		return err
	}
	s.coupons = next
	s.nextID = record.ID
	s.byCode[code] = len(next) - 1
	s.byID[record.ID] = len(next) - 1

	coupon.ID = record.ID
	coupon.Code = code
	coupon.UsedCount = 0
	coupon.CreatedAt = now
	coupon.UpdatedAt = now
	return nil
}

// Update 更新优惠券
func (s *Store) Update(coupon *models.Coupon) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.byID[coupon.ID]
	if !ok {
		return repository.ErrCouponGone
	}
	code := repository.NormalizeCouponCode(coupon.Code)
	if other, exists := s.byCode[code]; exists && other != idx {
		return fmt.Errorf("%w: %s", ErrDuplicateCode, code)
	}
	record := cloneCoupon(*coupon)
	record.Code = code
	record.CreatedAt = s.coupons[idx].CreatedAt
	record.UpdatedAt = s.now()

	next := append([]models.Coupon(nil), s.coupons...)
	next[idx] = record
	if err := s.persistCoupons(next); err != nil {
		return err
	}
	delete(s.byCode, s.coupons[idx].Code)
	s.coupons = next
	s.byCode[code] = idx

	coupon.Code = code
	coupon.UpdatedAt = record.UpdatedAt
	coupon.UsedCount = s.counts[coupon.ID]
	return nil
}

// Delete 删除优惠券，使用记录保留
func (s *Store) Delete(id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.byID[id]
	if !ok {
		return nil
	}
	next := make([]models.Coupon, 0, len(s.coupons)-1)
	next = append(next, s.coupons[:idx]...)
	next = append(next, s.coupons[idx+1:]...)
	if err := s.persistCoupons(next); err != nil {
		return err
	}
	issued := s.nextID
	s.coupons = next
	if err := s.reindex(); err != nil {
		return err
	}
	if issued > s.nextID {
		s.nextID = issued
	}
	return nil
}

// List 获取优惠券列表
func (s *Store) List(filter repository.CouponListFilter) ([]models.Coupon, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matched := make([]models.Coupon, 0)
	for _, c := range s.coupons {
		if matchCoupon(filter, c) {
			matched = append(matched, *s.view(c))
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })
	total := int64(len(matched))
	return paginate(matched, filter.Page, filter.PageSize), total, nil
}

// DeactivateExpired 停用已过期的优惠券
func (s *Store) DeactivateExpired(now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := append([]models.Coupon(nil), s.coupons...)
	var changed int64
	for i := range next {
		if next[i].IsActive && next[i].ValidUntil.Before(now) {
			next[i].IsActive = false
			next[i].UpdatedAt = now
			changed++
		}
	}
	if changed == 0 {
		return 0, nil
	}
	if err := s.persistCoupons(next); err != nil {
		return 0, err
	}
	s.coupons = next
	return changed, nil
}

// Redeem 追加使用记录，apply 失败时回写原使用记录
func (s *Store) Redeem(usage *models.CouponUsage, apply repository.RedeemHook) error {
	if usage == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.byID[usage.CouponID]
	if !ok {
		return repository.ErrCouponGone
	}
	coupon := s.coupons[idx]
	if coupon.UserUsageLimit != nil && s.countByUserLocked(coupon.ID, usage.UserID) >= int64(*coupon.UserUsageLimit) {
		return repository.ErrCouponUserLimitReached
	}
	if coupon.UsageLimit != nil && s.counts[coupon.ID] >= *coupon.UsageLimit {
		return repository.ErrCouponUsageExhausted
	}

	record := *usage
	record.ID = s.nextUID + 1
	record.CouponCode = coupon.Code
	if record.CreatedAt.IsZero() {
		record.CreatedAt = s.now()
	}
	next := append(append([]models.CouponUsage(nil), s.usages...), record)
	if err := s.persistUsages(next); err != nil {
		return err
	}
	if apply != nil {
		if err := apply(nil); err != nil {
			if rollbackErr := s.persistUsages(s.usages); rollbackErr != nil {
				return fmt.Errorf("%w (rollback usages: %v)", err, rollbackErr)
			}
			return err
		}
	}
	s.usages = next
	s.nextUID = record.ID
	s.counts[coupon.ID]++

	usage.ID = record.ID
	usage.CouponCode = record.CouponCode
	usage.CreatedAt = record.CreatedAt
	return nil
}

// GetUsageByID 根据ID获取使用记录
func (s *Store) GetUsageByID(id uint) (*models.CouponUsage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.usages {
		if s.usages[i].ID == id {
			usage := s.usages[i]
			return &usage, nil
		}
	}
	return nil, nil
}

// CountByUser 统计用户对某张优惠券的历史核销次数
func (s *Store) CountByUser(couponID, userID uint) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.countByUserLocked(couponID, userID), nil
}

func (s *Store) countByUserLocked(couponID, userID uint) int64 {
	var count int64
	for _, u := range s.usages {
		if u.CouponID == couponID && u.UserID == userID {
			count++
		}
	}
	return count
}

// ListUsages 获取使用记录
func (s *Store) ListUsages(filter repository.CouponUsageListFilter) ([]models.CouponUsage, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matched := make([]models.CouponUsage, 0)
	for i := len(s.usages) - 1; i >= 0; i-- {
		u := s.usages[i]
		if filter.CouponID != 0 && u.CouponID != filter.CouponID {
			continue
		}
		if filter.UserID != 0 && u.UserID != filter.UserID {
			continue
		}
		if filter.CreatedFrom != nil && u.CreatedAt.Before(*filter.CreatedFrom) {
			continue
		}
		if filter.CreatedTo != nil && u.CreatedAt.After(*filter.CreatedTo) {
			continue
		}
		matched = append(matched, u)
	}
	total := int64(len(matched))
	return paginate(matched, filter.Page, filter.PageSize), total, nil
}

// StatsByCoupon 汇总单张优惠券的核销数据
func (s *Store) StatsByCoupon(couponID uint) (*repository.CouponUsageStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make(map[uint]struct{})
	var discounts, originals, finals []models.Money
	stats := &repository.CouponUsageStats{}
	for i := range s.usages {
		u := s.usages[i]
		if u.CouponID != couponID {
			continue
		}
		stats.Redemptions++
		users[u.UserID] = struct{}{}
		discounts = append(discounts, u.DiscountAmount)
		originals = append(originals, u.OriginalAmount)
		finals = append(finals, u.FinalAmount)
		createdAt := u.CreatedAt
		stats.LastRedeemedAt = &createdAt
	}
	stats.UniqueUsers = int64(len(users))
	stats.TotalDiscount = repository.SumMoney(discounts...).String()
	stats.TotalOriginal = repository.SumMoney(originals...).String()
	stats.TotalFinal = repository.SumMoney(finals...).String()
	return stats, nil
}

// Usages 以 CouponUsageRepository 接口暴露使用记录
func (s *Store) Usages() *UsageView {
	return &UsageView{store: s}
}

// UsageView 使用记录视图
type UsageView struct {
	store *Store
}

// GetByID 根据ID获取使用记录
func (v *UsageView) GetByID(id uint) (*models.CouponUsage, error) {
	return v.store.GetUsageByID(id)
}

// CountByUser 统计用户核销次数
func (v *UsageView) CountByUser(couponID, userID uint) (int64, error) {
	return v.store.CountByUser(couponID, userID)
}

// List 获取使用记录
func (v *UsageView) List(filter repository.CouponUsageListFilter) ([]models.CouponUsage, int64, error) {
	return v.store.ListUsages(filter)
}

// StatsByCoupon 汇总核销数据
func (v *UsageView) StatsByCoupon(couponID uint) (*repository.CouponUsageStats, error) {
	return v.store.StatsByCoupon(couponID)
}

func matchCoupon(filter repository.CouponListFilter, c models.Coupon) bool {
	if keyword := strings.ToLower(strings.TrimSpace(filter.Keyword)); keyword != "" {
		if !strings.Contains(strings.ToLower(c.Code), keyword) && !strings.Contains(strings.ToLower(c.Description), keyword) {
			return false
		}
	}
	if filter.DiscountType != "" && c.DiscountType != filter.DiscountType {
		return false
	}
	if filter.IsActive != nil && c.IsActive != *filter.IsActive {
		return false
	}
	if filter.EligibleRole != "" && !c.EligibleRoles.ContainsFold(filter.EligibleRole) {
		return false
	}
	if filter.EligiblePlan != "" && !c.EligiblePlans.ContainsFold(filter.EligiblePlan) {
		return false
	}
	if filter.ValidAt != nil && (filter.ValidAt.Before(c.ValidFrom) || filter.ValidAt.After(c.ValidUntil)) {
		return false
	}
	return true
}

func paginate[T any](items []T, page, pageSize int) []T {
	if pageSize <= 0 {
		return items
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * pageSize
	if start >= len(items) {
		return []T{}
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func cloneCoupon(c models.Coupon) models.Coupon {
	out := c
	if c.MinAmount != nil {
		v := *c.MinAmount
		out.MinAmount = &v
	}
	if c.MaxDiscount != nil {
		v := *c.MaxDiscount
		out.MaxDiscount = &v
	}
	if c.UsageLimit != nil {
		v := *c.UsageLimit
		out.UsageLimit = &v
	}
	if c.UserUsageLimit != nil {
		v := *c.UserUsageLimit
		out.UserUsageLimit = &v
	}
	if c.CreatedByAdminID != nil {
		v := *c.CreatedByAdminID
		out.CreatedByAdminID = &v
	}
	out.EligibleRoles = append(models.StringArray(nil), c.EligibleRoles...)
	out.EligiblePlans = append(models.StringArray(nil), c.EligiblePlans...)
	return out
}
