package repository

import (
	"time"

	"github.com/kursadbilgin/failedemails-report/internal/domain"
	"gorm.io/gorm/schema"
)

// Table names are resolved through the naming strategy so the configured
// table prefix applies.
const (
	logTable          = "logstore_standard_log"
	userTable         = "user"
	configPluginTable = "config_plugins"
)

// LogEntryModel maps the platform's standard log store table.
type LogEntryModel struct {
	ID                int64   `gorm:"column:id;primaryKey;autoIncrement"`
	EventName         string  `gorm:"column:eventname;type:varchar(255);not null;default:'';index:idx_log_eventname_time,priority:1"`
	Component         string  `gorm:"column:component;type:varchar(100);not null;default:''"`
	Action            string  `gorm:"column:action;type:varchar(100);not null;default:''"`
	Target            string  `gorm:"column:target;type:varchar(100);not null;default:''"`
	ObjectTable       *string `gorm:"column:objecttable;type:varchar(50)"`
	ObjectID          *int64  `gorm:"column:objectid"`
	Crud              string  `gorm:"column:crud;type:varchar(1);not null;default:''"`
	EduLevel          int     `gorm:"column:edulevel;not null;default:0"`
	ContextID         int64   `gorm:"column:contextid;not null;default:0"`
	ContextLevel      int64   `gorm:"column:contextlevel;not null;default:0"`
	ContextInstanceID int64   `gorm:"column:contextinstanceid;not null;default:0"`
	UserID            int64   `gorm:"column:userid;not null;default:0"`
	CourseID          *int64  `gorm:"column:courseid"`
	RelatedUserID     *int64  `gorm:"column:relateduserid;index"`
	Anonymous         int     `gorm:"column:anonymous;not null;default:0"`
	Other             *string `gorm:"column:other;type:text"`
	TimeCreated       int64   `gorm:"column:timecreated;not null;default:0;index:idx_log_eventname_time,priority:2"`
	Origin            *string `gorm:"column:origin;type:varchar(10)"`
	IP                *string `gorm:"column:ip;type:varchar(45)"`
	RealUserID        *int64  `gorm:"column:realuserid"`
}

func (LogEntryModel) TableName(namer schema.Namer) string {
	return namer.TableName(logTable)
}

// UserModel maps the columns of the platform user table the report reads.
type UserModel struct {
	ID        int64  `gorm:"column:id;primaryKey;autoIncrement"`
	Username  string `gorm:"column:username;type:varchar(100);not null;default:'';uniqueIndex"`
	FirstName string `gorm:"column:firstname;type:varchar(100);not null;default:''"`
	LastName  string `gorm:"column:lastname;type:varchar(100);not null;default:''"`
	Email     string `gorm:"column:email;type:varchar(100);not null;default:''"`
	Deleted   int    `gorm:"column:deleted;not null;default:0"`
	Suspended int    `gorm:"column:suspended;not null;default:0"`
}

func (UserModel) TableName(namer schema.Namer) string {
	return namer.TableName(userTable)
}

// ConfigPluginModel maps plugin configuration values.
type ConfigPluginModel struct {
	ID     int64   `gorm:"column:id;primaryKey;autoIncrement"`
	Plugin string  `gorm:"column:plugin;type:varchar(100);not null;default:'core';uniqueIndex:idx_config_plugins_plugin_name,priority:1"`
	Name   string  `gorm:"column:name;type:varchar(100);not null;default:'';uniqueIndex:idx_config_plugins_plugin_name,priority:2"`
	Value  *string `gorm:"column:value;type:text"`
}

func (ConfigPluginModel) TableName(namer schema.Namer) string {
	return namer.TableName(configPluginTable)
}

// failureRow is the projection selected by the report query.
type failureRow struct {
	ID            int64   `gorm:"column:id"`
	RelatedUserID int64   `gorm:"column:relateduserid"`
	Other         *string `gorm:"column:other"`
	TimeCreated   int64   `gorm:"column:timecreated"`
	FirstName     string  `gorm:"column:firstname"`
	LastName      string  `gorm:"column:lastname"`
	Deleted       int     `gorm:"column:deleted"`
}

func failureRowToDomain(r *failureRow) domain.FailureRecord {
	record := domain.FailureRecord{
		ID:            r.ID,
		RelatedUserID: r.RelatedUserID,
		FirstName:     r.FirstName,
		LastName:      r.LastName,
		UserDeleted:   r.Deleted != 0,
		TimeCreated:   time.Unix(r.TimeCreated, 0).UTC(),
	}
	if r.Other != nil {
		record.Other = *r.Other
	}
	return record
}

func userModelToDomain(m *UserModel) *domain.User {
	if m == nil {
		return nil
	}

	return &domain.User{
		ID:        m.ID,
		Username:  m.Username,
		FirstName: m.FirstName,
		LastName:  m.LastName,
		Email:     m.Email,
		Deleted:   m.Deleted != 0,
		Suspended: m.Suspended != 0,
	}
}
