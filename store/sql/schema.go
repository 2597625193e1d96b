package sql

import (
	"crypto/sha1"
	"fmt"
)

type migration struct {
	key   string
	query string
}

func migQuery(query string) migration {
	return migration{
		key:   fmt.Sprintf("%x", sha1.Sum([]byte(query)))[0:8],
		query: query,
	}
}

func migrations() []migration {
	var queries []migration

	// Mapping records
	queries = append(queries, migQuery("create table group_mappings ("+
		"`partition`                 varchar(64)                           not null,"+
		"`user_group_id`             varchar(64)                           not null,"+
		"`user_group_name`           varchar(255) default ''               not null,"+
		"`device_group_id`           varchar(64)                           not null,"+
		"`device_group_name`         varchar(255) default ''               not null,"+
		"`state`                     varchar(20)  default 'Active'         not null,"+
		"`require_compliant`         tinyint(1)   default 0                not null,"+
		"`enrollment_profile_filter` text null,"+
		"`lastUpdate`                datetime     default CURRENT_TIMESTAMP not null,"+
		"PRIMARY KEY (`partition`, `user_group_id`, `device_group_id`)"+
		");"))
	queries = append(queries, migQuery("create index mapping_partition on group_mappings(`partition`);"))

	// Sync activity
	queries = append(queries, migQuery("create table sync_activity ("+
		"`id`              varchar(64)             not null,"+
		"`partition`       varchar(64)             not null,"+
		"`user_group_id`   varchar(64)             not null,"+
		"`device_group_id` varchar(64)             not null,"+
		"`started`         datetime                not null,"+
		"`duration_ms`     int         default 0   not null,"+
		"`outcome`         varchar(20) default ''  not null,"+
		"`desired`         int         default 0   not null,"+
		"`current`         int         default 0   not null,"+
		"`added`           int         default 0   not null,"+
		"`removed`         int         default 0   not null,"+
		"`failures`        int         default 0   not null,"+
		"`detail`          text null,"+
		"PRIMARY KEY (`id`)"+
		");"))
	queries = append(queries, migQuery("create index activity_partition on sync_activity(`partition`, `started`);"))

	return queries
}
