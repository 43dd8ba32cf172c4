package maintenance

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"notes-api/internal/auth"
	"notes-api/internal/models"
)

// RoleFix records one renamed value.
type RoleFix struct {
	Table string
	ID    string
	From  string
	To    string
}

// ErrRoleCollision means two stored roles normalize to the same name.
var ErrRoleCollision = errors.New("roles collide after normalization")

// FixRoleNames rewrites role names on roles and admins to their normalized form.
// With dryRun set it only reports what would change. Roles that would collide
// abort the run before anything is written.
func FixRoleNames(db *gorm.DB, dryRun bool, log *zap.Logger) ([]RoleFix, error) {
	var roles []models.Role
	if err := db.Unscoped().Find(&roles).Error; err != nil {
		return nil, fmt.Errorf("load roles: %w", err)
	}
	var admins []models.Admin
	if err := db.Unscoped().Find(&admins).Error; err != nil {
		return nil, fmt.Errorf("load admins: %w", err)
	}

	owner := make(map[string]string, len(roles))
	var fixes []RoleFix
	for _, r := range roles {
		norm := auth.NormalizeRoleName(r.Name)
		if prev, ok := owner[norm]; ok {
			return nil, fmt.Errorf("%w: %q and %q both become %q", ErrRoleCollision, prev, r.Name, norm)
		}
		owner[norm] = r.Name
		if norm != r.Name {
			fixes = append(fixes, RoleFix{Table: "roles", ID: r.ID, From: r.Name, To: norm})
		}
	}
	for _, a := range admins {
		if norm := auth.NormalizeRoleName(a.Role); norm != a.Role {
			fixes = append(fixes, RoleFix{Table: "admins", ID: a.ID, From: a.Role, To: norm})
		}
	}

	for _, f := range fixes {
		log.Info("role name fix",
			zap.String("table", f.Table), zap.String("id", f.ID),
			zap.String("from", f.From), zap.String("to", f.To), zap.Bool("dry_run", dryRun))
	}
	if dryRun || len(fixes) == 0 {
		return fixes, nil
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		for _, f := range fixes {
			var res *gorm.DB
			switch f.Table {
			case "roles":
				res = tx.Unscoped().Model(&models.Role{}).Where("id = ?", f.ID).Update("name", f.To)
			default:
				res = tx.Unscoped().Model(&models.Admin{}).Where("id = ?", f.ID).Update("role", f.To)
			}
			if res.Error != nil {
				return fmt.Errorf("update %s %s: %w", f.Table, f.ID, res.Error)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return fixes, nil
}
