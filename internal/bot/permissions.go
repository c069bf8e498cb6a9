package bot

import (
	"github.com/bwmarrin/discordgo"
	"github.com/divine-development/divine/internal/discordutil"
)

// IsOwner returns true if user is bot owner
func (conf *Configuration) IsOwner(userID string) bool {
	return userID != "" && userID == conf.Config.Private.Owner
}

// HasPermission returns true if message author has administrative or matching permissions
func (conf *Configuration) HasPermission(msg *discordgo.Message, permissions int64) bool {
	if msg.Author == nil || msg.GuildID == "" {
		return false
	}

	return conf.HasPermissionUserID(msg.Member, msg.GuildID, msg.Author.ID, permissions)
}

func (conf *Configuration) guild(guildID string) *discordgo.Guild {
	if conf.Discord.State != nil {
		if guild, err := conf.Discord.State.Guild(guildID); err == nil {
			return guild
		}
	}

	guild, err := conf.Discord.Guild(guildID)
	if err != nil {
		conf.Log.WithError(err).WithField("guild", guildID).Error("Loading guild")

		return nil
	}

	return guild
}

func (conf *Configuration) role(guildID, roleID string) *discordgo.Role {
	if conf.Discord.State != nil {
		if role, err := conf.Discord.State.Role(guildID, roleID); err == nil {
			return role
		}
	}

	roles, err := conf.Discord.GuildRoles(guildID)
	if err != nil {
		conf.Log.WithError(err).WithField("guild", guildID).Error("Loading roles")

		return nil
	}

	for _, role := range roles {
		if role.ID == roleID {
			return role
		}
	}

	return nil
}

// HasPermissionUserID returns true if guild member has administrative or matching permissions.
// Guild configured admin role counts as administrator.
func (conf *Configuration) HasPermissionUserID(
	member *discordgo.Member,
	guildID, userID string,
	permissions int64,
) bool {
	guild := conf.guild(guildID)
	if guild != nil && guild.OwnerID == userID {
		return true
	}

	admrole := conf.Repository.Get(guildID).AdminRoleID()

	var err error

	if member == nil {
		member, err = conf.Discord.GuildMember(guildID, userID)
		if err != nil {
			conf.Log.WithError(err).WithField("guild", guildID).WithField("user", userID).Error("Loading member")

			return false
		}
	}

	for _, r := range member.Roles {
		role := conf.role(guildID, r)
		if role == nil {
			continue
		}

		if evalPermissions(role, permissions, admrole) {
			return true
		}
	}

	return false
}

func evalPermissions(role *discordgo.Role, permissions int64, admrole string) bool {
	if permissions != 0 && discordutil.RoleAllowsAdmin(role) {
		return true
	}

	if permissions != 0 && role.Permissions&permissions == permissions {
		return true
	}

	return permissions&discordgo.PermissionAdministrator != 0 && admrole != "" && role.ID == admrole
}
