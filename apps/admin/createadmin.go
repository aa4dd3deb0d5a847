package main

import (
	"context"

	"github.com/edufacil/efs/core"
	"github.com/edufacil/efs/core/user"
)

// createAdmin updates or creates an admin user.User
func (cli *commandLine) createAdmin(sid, email, pwd string) error {
	ctx := context.Background()
	sid = core.CleanString(sid, true /* lower */)
	email = core.CleanString(email, true /* lower */)

	usr, err := cli.usrRepo.GetUser(ctx, user.GetFilter{SIDOrEmail: sid})
	if err != nil {
		if err != user.ErrNotFound {
			return err
		}
		usr = user.User{
			SID:   sid,
			Email: email,
			Roles: user.AdminRoles,
		}
		usr.SetActive(true)
		if err := usr.SetPassword(pwd); err != nil {
			return err
		}
		_, err = cli.usrRepo.CreateUser(ctx, usr)
		return err
	}

	usr.Email = email
	usr.Roles = user.AdminRoles
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	active := true
	_, err = cli.usrRepo.UpdateUser(ctx, usr, &active)
	return err
}
