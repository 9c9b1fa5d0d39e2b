package app_setting

import (
	"io/ioutil"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// This is the blog setting shared by the server and the workflows. Keys left
// out of the yaml file keep their default value.
type BlogAppSetting struct {
	// Shortest password accepted on register and on password change.
	MIN_PASSWORD_LENGTH int `yaml:"MIN_PASSWORD_LENGTH"`
	// Extensions (lower case, no dot) accepted for profile images.
	ALLOWED_IMAGE_EXTENSIONS []string `yaml:"ALLOWED_IMAGE_EXTENSIONS"`
	// Placeholder image every new user starts with. It is never deleted from
	// the image store.
	DEFAULT_PROFILE_IMAGE string `yaml:"DEFAULT_PROFILE_IMAGE"`
	// Folder used by the local image store.
	PROFILE_IMAGE_DIR string `yaml:"PROFILE_IMAGE_DIR"`
	// Url prefix the local image store is served under.
	PROFILE_IMAGE_URL_PREFIX string `yaml:"PROFILE_IMAGE_URL_PREFIX"`
	SESSION_TTL_HOURS        int    `yaml:"SESSION_TTL_HOURS"`
	// bcrypt work factor, tests lower it to keep them fast.
	BCRYPT_COST int `yaml:"BCRYPT_COST"`
	// Max number of characters of the post excerpt on the index page.
	EXCERPT_LENGTH int `yaml:"EXCERPT_LENGTH"`
	// Subject of the mail sent by the contact form.
	CONTACT_SUBJECT string `yaml:"CONTACT_SUBJECT"`
}

func DefaultBlogAppSetting() BlogAppSetting {
	return BlogAppSetting{
		MIN_PASSWORD_LENGTH:      8,
		ALLOWED_IMAGE_EXTENSIONS: []string{"png", "jpg", "jpeg", "gif"},
		DEFAULT_PROFILE_IMAGE:    "default-avatar.jpg",
		PROFILE_IMAGE_DIR:        "static/images",
		PROFILE_IMAGE_URL_PREFIX: "/static/images",
		SESSION_TTL_HOURS:        24 * 7,
		BCRYPT_COST:              10,
		EXCERPT_LENGTH:           200,
		CONTACT_SUBJECT:          "New Message",
	}
}

func (s BlogAppSetting) SessionTTL() time.Duration {
	return time.Duration(s.SESSION_TTL_HOURS) * time.Hour
}

// ParseBlogAppSetting reads the yaml file at path on top of the defaults. An
// empty path returns the defaults.
func ParseBlogAppSetting(path string) (BlogAppSetting, error) {
	c := DefaultBlogAppSetting()
	if path == "" {
		return c, nil
	}
	yamlFile, err := ioutil.ReadFile(path)
	if err != nil {
		return c, errors.Wrap(err, "fail to read setting file")
	}
	if err = yaml.Unmarshal(yamlFile, &c); err != nil {
		return c, errors.Wrap(err, "fail to parse setting file")
	}
	if c.MIN_PASSWORD_LENGTH <= 0 || c.SESSION_TTL_HOURS <= 0 || len(c.ALLOWED_IMAGE_EXTENSIONS) == 0 {
		return c, errors.New("MIN_PASSWORD_LENGTH, SESSION_TTL_HOURS and ALLOWED_IMAGE_EXTENSIONS must be set")
	}
	return c, nil
}
